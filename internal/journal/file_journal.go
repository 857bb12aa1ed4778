package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStorage implements the Storage interface using a JSON records file
type FileStorage struct {
	basePath    string
	recordsPath string
	mu          sync.RWMutex
	initialized bool
}

// NewFileStorage creates a new file-based journal storage
func NewFileStorage(basePath string) (*FileStorage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	return &FileStorage{
		basePath:    basePath,
		recordsPath: filepath.Join(basePath, "attachment_journal.json"),
	}, nil
}

// Initialize prepares the storage for use
func (fs *FileStorage) Initialize() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	if _, err := os.Stat(fs.recordsPath); os.IsNotExist(err) {
		if err := fs.saveRecords([]Record{}); err != nil {
			return fmt.Errorf("failed to create journal file: %w", err)
		}
	}

	fs.initialized = true
	return nil
}

// Close cleans up any resources
func (fs *FileStorage) Close() error {
	// No resources to clean up for file storage
	return nil
}

// Append adds a new record to the journal
func (fs *FileStorage) Append(record Record) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.initialized {
		return ErrStorageNotInitialized
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}

	records, err := fs.loadRecords()
	if err != nil {
		return err
	}

	records = append(records, record)
	return fs.saveRecords(records)
}

// Records retrieves records matching the filter
func (fs *FileStorage) Records(filter map[string]string) ([]Record, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if !fs.initialized {
		return nil, ErrStorageNotInitialized
	}

	records, err := fs.loadRecords()
	if err != nil {
		return nil, err
	}

	if len(filter) == 0 {
		return records, nil
	}

	var matched []Record
	for _, r := range records {
		if matchesFilter(r, filter) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func matchesFilter(r Record, filter map[string]string) bool {
	for key, value := range filter {
		switch key {
		case "config_id":
			if r.ConfigID != value {
				return false
			}
		case "date_key":
			if r.DateKey != value {
				return false
			}
		case "action":
			if r.Action != value {
				return false
			}
		case "status":
			if r.Status != value {
				return false
			}
		case "file_name":
			if r.FileName != value {
				return false
			}
		}
	}
	return true
}

// CleanupOldRecords removes records older than the retention period
func (fs *FileStorage) CleanupOldRecords(retentionDays int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.initialized {
		return ErrStorageNotInitialized
	}

	if retentionDays <= 0 {
		// Default to 30 days if not specified
		retentionDays = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	records, err := fs.loadRecords()
	if err != nil {
		return err
	}

	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if r.RecordedAt.After(cutoff) {
			kept = append(kept, r)
		}
	}

	if len(kept) == len(records) {
		return nil
	}
	return fs.saveRecords(kept)
}

func (fs *FileStorage) loadRecords() ([]Record, error) {
	data, err := os.ReadFile(fs.recordsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to read journal file: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse journal file: %w", err)
	}
	return records, nil
}

func (fs *FileStorage) saveRecords(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal records: %w", err)
	}

	if err := os.WriteFile(fs.recordsPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write journal file: %w", err)
	}
	return nil
}
