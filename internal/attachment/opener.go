package attachment

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/daykeep/attachment-store/internal/types"
)

// Opener hands paths to the OS default application or file browser. The
// launched viewer runs detached; only the launch itself is reported.
type Opener struct {
	fileCommand   []string
	folderCommand []string
	logger        *slog.Logger
}

// NewOpener creates an opener, honoring per-config command overrides
func NewOpener(cfg *types.Config, logger *slog.Logger) *Opener {
	return &Opener{
		fileCommand:   cfg.Opener.FileCommand,
		folderCommand: cfg.Opener.FolderCommand,
		logger:        logger,
	}
}

// OpenFile opens path with the OS default application for its type
func (o *Opener) OpenFile(path string) error {
	return o.launch(o.fileCommand, path)
}

// OpenFolder reveals path in the OS file browser
func (o *Opener) OpenFolder(path string) error {
	return o.launch(o.folderCommand, path)
}

func (o *Opener) launch(override []string, path string) error {
	argv := override
	if len(argv) == 0 {
		argv = defaultOpenCommand()
	}

	args := append(append([]string{}, argv[1:]...), path)
	o.logger.Debug("launching opener", "command", argv[0], "path", path)

	if err := exec.Command(argv[0], args...).Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", argv[0], err)
	}
	return nil
}

func defaultOpenCommand() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"cmd", "/c", "start", ""}
	case "darwin":
		return []string{"open"}
	default:
		return []string{"xdg-open"}
	}
}
