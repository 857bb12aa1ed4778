package journal

import (
	"errors"
	"time"
)

// Actions recorded in the journal.
const (
	ActionAdd    = "add"
	ActionDelete = "delete"
)

// Outcome statuses.
const (
	StatusStored  = "stored"
	StatusFailed  = "failed"
	StatusDeleted = "deleted"
)

// Record represents one attachment operation outcome
type Record struct {
	ID         string    `json:"id"`
	ConfigID   string    `json:"config_id"`
	DateKey    string    `json:"date_key"`
	Action     string    `json:"action"`
	FileName   string    `json:"file_name,omitempty"`
	Source     string    `json:"source,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Storage defines the interface for persisting journal records
type Storage interface {
	// Initialize prepares the storage for use
	Initialize() error

	// Close cleans up any resources used by the storage
	Close() error

	// Append adds a new record to the journal
	Append(record Record) error

	// Records retrieves records, optionally filtered
	Records(filter map[string]string) ([]Record, error)

	// CleanupOldRecords removes records older than the retention period
	CleanupOldRecords(retentionDays int) error
}

// NewStorage creates a journal storage implementation based on the type
func NewStorage(storageType, storagePath string) (Storage, error) {
	switch storageType {
	case "file", "":
		return NewFileStorage(storagePath)
	case "database":
		// Attachment metadata stays out of databases for now
		return nil, ErrUnsupportedStorageType
	default:
		return nil, ErrUnsupportedStorageType
	}
}

// Common errors
var (
	ErrUnsupportedStorageType = errors.New("unsupported journal storage type")
	ErrStorageNotInitialized  = errors.New("journal storage not initialized")
)
