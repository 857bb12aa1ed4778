package journal

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/daykeep/attachment-store/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerDisabledIsNoOp(t *testing.T) {
	cfg := &types.Config{}
	cfg.Meta.ID = "personal"

	m, err := NewManager(cfg, testLogger())
	require.NoError(t, err)
	defer m.Close()

	assert.NoError(t, m.RecordStored("2025-09-20", "a.pdf", "/tmp/a.pdf"))
	assert.NoError(t, m.RecordDeleted("2025-09-20", "a.pdf"))
	assert.NoError(t, m.CleanupOldRecords())

	records, err := m.Records(nil)
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestManagerStampsConfigID(t *testing.T) {
	cfg := &types.Config{}
	cfg.Meta.ID = "personal"
	cfg.Journal.Enabled = true
	cfg.Journal.StorageType = "file"
	cfg.Journal.StoragePath = t.TempDir()

	m, err := NewManager(cfg, testLogger())
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.RecordStored("2025-09-20", "a.pdf", "/tmp/a.pdf"))
	require.NoError(t, m.RecordFailed("2025-09-20", "/tmp/b.pdf", errors.New("boom")))

	records, err := m.Records(map[string]string{"config_id": "personal"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, StatusStored, records[0].Status)
	assert.Equal(t, StatusFailed, records[1].Status)
	assert.Equal(t, "boom", records[1].Error)
}
