package types

import "github.com/daykeep/attachment-store/internal/models"

// Config represents a single vault configuration
type Config struct {
	// Meta information for the configuration
	Meta struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description,omitempty"`
		Enabled     bool   `yaml:"enabled"`
		Template    string `yaml:"template,omitempty"` // Name of the template to use
	} `yaml:"meta"`

	Storage struct {
		Backend    string `yaml:"backend"`     // "folder" (default)
		DataRoot   string `yaml:"data_root"`   // root of all date folders
		FolderName string `yaml:"folder_name"` // attachment subfolder per date, defaults to "_files"
	} `yaml:"storage"`

	Attachments models.AttachmentPolicy `yaml:"attachments"`

	Journal struct {
		Enabled       bool   `yaml:"enabled"`
		StorageType   string `yaml:"storage_type"`
		StoragePath   string `yaml:"storage_path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`

	// Opener overrides the OS default open commands; the stored path is
	// appended as the last argument. Empty means platform default.
	Opener struct {
		FileCommand   []string `yaml:"file_command,omitempty"`
		FolderCommand []string `yaml:"folder_command,omitempty"`
	} `yaml:"opener"`

	Logging struct {
		Level         string `yaml:"level"`
		Format        string `yaml:"format"`
		IncludeCaller bool   `yaml:"include_caller"`
	} `yaml:"logging"`

	Scheduling struct {
		Enabled         bool   `yaml:"enabled"`
		FrequencyEvery  string `yaml:"frequency_every"` // minute, hour, day, week, month
		FrequencyAmount int    `yaml:"frequency_amount"`
		StartNow        bool   `yaml:"start_now"`
		StartAt         string `yaml:"start_at"` // UTC DateTime
		StopAt          string `yaml:"stop_at"`  // UTC DateTime
	} `yaml:"scheduling"`
}
