package u_io

import (
	"path/filepath"
	"strings"
)

// CleanFilename removes potentially dangerous characters from filenames
func CleanFilename(filename string) string {
	// Drop any path components first
	filename = filepath.Base(filename)

	// Replace any path separators
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")

	// Remove any other potentially dangerous characters
	filename = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '.' || r == '-' || r == '_' || r == ' ' || r == '(' || r == ')' {
			return r
		}
		return '_'
	}, filename)

	// Trim spaces
	filename = strings.TrimSpace(filename)

	return filename
}
