package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/daykeep/attachment-store/internal/types"
)

// ValidateConfig performs validation on a single configuration
func ValidateConfig(cfg *types.Config) error {
	if err := validateMeta(cfg); err != nil {
		return fmt.Errorf("meta validation failed: %w", err)
	}

	if err := validateStorage(cfg); err != nil {
		return fmt.Errorf("storage validation failed: %w", err)
	}

	if err := validateAttachments(cfg); err != nil {
		return fmt.Errorf("attachments validation failed: %w", err)
	}

	if err := validateJournal(cfg); err != nil {
		return fmt.Errorf("journal validation failed: %w", err)
	}

	if err := validateOpener(cfg); err != nil {
		return fmt.Errorf("opener validation failed: %w", err)
	}

	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}

	if err := validateScheduling(cfg); err != nil {
		return fmt.Errorf("scheduling validation failed: %w", err)
	}

	return nil
}

func validateMeta(cfg *types.Config) error {
	if cfg.Meta.ID == "" {
		return fmt.Errorf("meta.id is required")
	}

	if !isValidID(cfg.Meta.ID) {
		return fmt.Errorf("meta.id contains invalid characters (use only alphanumeric, dash, underscore)")
	}

	if cfg.Meta.Name == "" {
		return fmt.Errorf("meta.name is required")
	}

	return nil
}

func validateStorage(cfg *types.Config) error {
	switch cfg.Storage.Backend {
	case "", "folder", "database":
		// Known backends; "database" fails later at construction but is
		// a recognized value
	default:
		return fmt.Errorf("storage.backend must be 'folder' or 'database'")
	}

	if cfg.Storage.DataRoot == "" {
		return fmt.Errorf("storage.data_root is required")
	}

	if !filepath.IsAbs(cfg.Storage.DataRoot) {
		return fmt.Errorf("storage.data_root must be absolute")
	}

	if strings.ContainsAny(cfg.Storage.FolderName, `/\`) {
		return fmt.Errorf("storage.folder_name must not contain path separators")
	}
	if cfg.Storage.FolderName == "." || cfg.Storage.FolderName == ".." {
		return fmt.Errorf("storage.folder_name must be a plain directory name")
	}

	return nil
}

func validateAttachments(cfg *types.Config) error {
	for _, ext := range cfg.Attachments.AllowedTypes {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("attachments.allowed_types: extension %q must start with dot", ext)
		}
	}

	if cfg.Attachments.MaxSize < 0 {
		return fmt.Errorf("attachments.max_size must not be negative")
	}

	return nil
}

func validateJournal(cfg *types.Config) error {
	if !cfg.Journal.Enabled {
		return nil // Skip validation if journaling is disabled
	}

	switch cfg.Journal.StorageType {
	case "", "file", "database":
		// Valid storage types
	default:
		return fmt.Errorf("journal.storage_type must be 'file' or 'database'")
	}

	if cfg.Journal.StoragePath == "" {
		return fmt.Errorf("journal.storage_path is required when journaling is enabled")
	}
	if !filepath.IsAbs(cfg.Journal.StoragePath) {
		return fmt.Errorf("journal.storage_path must be absolute")
	}

	if cfg.Journal.RetentionDays < 0 {
		return fmt.Errorf("journal.retention_days must not be negative")
	}

	return nil
}

func validateOpener(cfg *types.Config) error {
	if len(cfg.Opener.FileCommand) > 0 && cfg.Opener.FileCommand[0] == "" {
		return fmt.Errorf("opener.file_command must start with an executable")
	}
	if len(cfg.Opener.FolderCommand) > 0 && cfg.Opener.FolderCommand[0] == "" {
		return fmt.Errorf("opener.folder_command must start with an executable")
	}
	return nil
}

func validateLogging(cfg *types.Config) error {
	validLevels := map[string]bool{
		"":      true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"":     true,
		"text": true,
		"json": true,
		"dev":  true,
	}

	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: text, json, dev")
	}

	return nil
}

func validateScheduling(cfg *types.Config) error {
	if !cfg.Scheduling.Enabled {
		return nil // Skip validation if scheduling is disabled
	}

	validFrequencies := map[string]bool{
		"minute": true,
		"hour":   true,
		"day":    true,
		"week":   true,
		"month":  true,
	}

	if !validFrequencies[cfg.Scheduling.FrequencyEvery] {
		return fmt.Errorf("scheduling.frequency_every must be one of: minute, hour, day, week, month")
	}

	if cfg.Scheduling.FrequencyAmount < 1 {
		return fmt.Errorf("scheduling.frequency_amount must be greater than 0")
	}

	if !cfg.Scheduling.StartNow && cfg.Scheduling.StartAt != "" {
		if _, err := time.Parse(time.RFC3339, cfg.Scheduling.StartAt); err != nil {
			return fmt.Errorf("scheduling.start_at must be in RFC3339 format (e.g., 2006-01-02T15:04:05Z)")
		}
	}

	if cfg.Scheduling.StopAt != "" {
		stopAt, err := time.Parse(time.RFC3339, cfg.Scheduling.StopAt)
		if err != nil {
			return fmt.Errorf("scheduling.stop_at must be in RFC3339 format (e.g., 2006-01-02T15:04:05Z)")
		}

		if cfg.Scheduling.StartAt != "" {
			startAt, _ := time.Parse(time.RFC3339, cfg.Scheduling.StartAt)
			if stopAt.Before(startAt) {
				return fmt.Errorf("scheduling.stop_at must be after start_at")
			}
		}
	}

	return nil
}

func isValidID(id string) bool {
	for _, r := range id {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			continue
		}
		return false
	}
	return true
}
