package journal

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/daykeep/attachment-store/internal/types"
)

// Manager handles journal operations for one configuration
type Manager struct {
	cfg     *types.Config
	logger  *slog.Logger
	storage Storage
	mu      sync.Mutex
}

// NewManager creates a new journal manager. With journaling disabled the
// manager is a no-op, so callers never have to branch.
func NewManager(cfg *types.Config, logger *slog.Logger) (*Manager, error) {
	if !cfg.Journal.Enabled {
		logger.Debug("attachment journal is disabled")
		return &Manager{
			cfg:    cfg,
			logger: logger,
		}, nil
	}

	storage, err := NewStorage(cfg.Journal.StorageType, cfg.Journal.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal storage: %w", err)
	}

	if err := storage.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize journal storage: %w", err)
	}

	logger.Debug("initialized attachment journal",
		"storage_type", cfg.Journal.StorageType,
		"storage_path", cfg.Journal.StoragePath)

	return &Manager{
		cfg:     cfg,
		logger:  logger,
		storage: storage,
	}, nil
}

// Close cleans up resources
func (m *Manager) Close() error {
	if m.storage != nil {
		return m.storage.Close()
	}
	return nil
}

// RecordStored notes a successfully stored attachment
func (m *Manager) RecordStored(dateKey, fileName, source string) error {
	return m.append(Record{
		DateKey:  dateKey,
		Action:   ActionAdd,
		FileName: fileName,
		Source:   source,
		Status:   StatusStored,
	})
}

// RecordFailed notes a source that could not be stored
func (m *Manager) RecordFailed(dateKey, source string, cause error) error {
	return m.append(Record{
		DateKey: dateKey,
		Action:  ActionAdd,
		Source:  source,
		Status:  StatusFailed,
		Error:   cause.Error(),
	})
}

// RecordDeleted notes a deleted attachment
func (m *Manager) RecordDeleted(dateKey, fileName string) error {
	return m.append(Record{
		DateKey:  dateKey,
		Action:   ActionDelete,
		FileName: fileName,
		Status:   StatusDeleted,
	})
}

func (m *Manager) append(record Record) error {
	if !m.cfg.Journal.Enabled || m.storage == nil {
		return nil // Journaling is disabled, silently succeed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record.ConfigID = m.cfg.Meta.ID
	record.RecordedAt = time.Now().UTC()

	if err := m.storage.Append(record); err != nil {
		m.logger.Error("failed to append journal record",
			"action", record.Action,
			"date_key", record.DateKey,
			"error", err)
		return err
	}

	m.logger.Debug("journaled attachment operation",
		"action", record.Action,
		"date_key", record.DateKey,
		"file_name", record.FileName,
		"status", record.Status)

	return nil
}

// Records retrieves journal records matching the filter
func (m *Manager) Records(filter map[string]string) ([]Record, error) {
	if !m.cfg.Journal.Enabled || m.storage == nil {
		return nil, nil
	}
	return m.storage.Records(filter)
}

// CleanupOldRecords removes records older than the retention period
func (m *Manager) CleanupOldRecords() error {
	if !m.cfg.Journal.Enabled || m.storage == nil {
		return nil // Journaling is disabled, silently succeed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.CleanupOldRecords(m.cfg.Journal.RetentionDays); err != nil {
		m.logger.Error("failed to clean up journal records", "error", err)
		return err
	}

	m.logger.Info("cleaned up old journal records",
		"retention_days", m.cfg.Journal.RetentionDays)

	return nil
}
