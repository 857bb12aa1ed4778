package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/daykeep/attachment-store/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestSetupHonorsLevel(t *testing.T) {
	cfg := &types.Config{}
	cfg.Logging.Level = "error"

	l := Setup(cfg)
	ctx := context.Background()
	assert.False(t, l.Handler().Enabled(ctx, slog.LevelWarn))
	assert.True(t, l.Handler().Enabled(ctx, slog.LevelError))
}

func TestSetupDefaultsToInfo(t *testing.T) {
	l := Setup(&types.Config{})
	ctx := context.Background()
	assert.True(t, l.Handler().Enabled(ctx, slog.LevelInfo))
	assert.False(t, l.Handler().Enabled(ctx, slog.LevelDebug))
}

func TestSetupFormats(t *testing.T) {
	cfg := &types.Config{}

	cfg.Logging.Format = "json"
	assert.IsType(t, &slog.JSONHandler{}, Setup(cfg).Handler())

	cfg.Logging.Format = "text"
	assert.IsType(t, &slog.TextHandler{}, Setup(cfg).Handler())

	cfg.Logging.Format = ""
	assert.IsType(t, &slog.TextHandler{}, Setup(cfg).Handler())
}
