package models

import "time"

// Attachment describes a single file stored inside a date's attachment
// folder. Size and modification time come from the filesystem at listing
// time; nothing is cached between calls.
type Attachment struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	SizeHuman string    `json:"size_h"`
	ModTime   time.Time `json:"mtime"`
}

// AttachmentPolicy holds optional add-time filtering. Zero values mean no
// size limit and no type filtering, so an empty policy stores any readable
// file under its original base name.
type AttachmentPolicy struct {
	AllowedTypes      []string `yaml:"allowed_types,omitempty"`
	MaxSize           int64    `yaml:"max_size,omitempty"`
	SanitizeFilenames bool     `yaml:"sanitize_filenames"`
}
