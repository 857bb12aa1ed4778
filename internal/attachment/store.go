package attachment

import (
	"fmt"
	"log/slog"

	"github.com/daykeep/attachment-store/internal/models"
	"github.com/daykeep/attachment-store/internal/types"
)

// Store defines the capability interface for date-scoped attachment
// backends. Every operation validates its date key (and file name, where
// one is taken) before touching the filesystem, and each call is a
// self-contained filesystem transaction with no cross-call state.
type Store interface {
	// AddFiles copies each source into the date's attachment folder,
	// resolving name collisions with a " (n)" suffix. It is best-effort:
	// a failing source is skipped, the rest are still stored, and the
	// failures come back aggregated in a *BatchError. The returned names
	// are the final stored names of the successes, in source order.
	AddFiles(dateKey string, sources []string) ([]string, error)

	// ListFiles returns the date's attachments ordered by name,
	// case-insensitive ascending. A date with no folder yields an empty
	// slice and creates nothing.
	ListFiles(dateKey string) ([]models.Attachment, error)

	// DeleteFile removes exactly the named attachment. The folder stays
	// even when it becomes empty.
	DeleteFile(dateKey, fileName string) error

	// Locate resolves an attachment to an absolute on-disk path,
	// refusing names or symlinks that lead outside the folder.
	Locate(dateKey, fileName string) (string, error)

	// OpenFile hands the attachment to the OS default application.
	OpenFile(dateKey, fileName string) error

	// OpenDateFolder reveals the date's attachment folder in the OS file
	// browser, creating it first so there is always something to show.
	OpenDateFolder(dateKey string) error
}

// BackendType represents the kind of attachment backend
type BackendType string

const (
	BackendFolder   BackendType = "folder"
	BackendDatabase BackendType = "database"
)

// NewStore creates a store instance based on the configuration
func NewStore(cfg *types.Config, logger *slog.Logger) (Store, error) {
	switch BackendType(cfg.Storage.Backend) {
	case BackendFolder, "":
		return NewFolderStore(cfg, logger)
	case BackendDatabase:
		// Row-backed attachments are a separate ownership model; the
		// slot exists so the two never get conflated into one type.
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, cfg.Storage.Backend)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, cfg.Storage.Backend)
	}
}
