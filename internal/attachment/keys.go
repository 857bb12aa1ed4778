package attachment

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DateKey is a validated ISO calendar date (YYYY-MM-DD) used verbatim as a
// folder-name component under the data root.
type DateKey string

// FileName is a validated attachment name with no path components, safe to
// join directly under a date's attachment folder.
type FileName string

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDateKey validates s as a date key. The key is taken verbatim, so
// surrounding whitespace fails the shape check. The shape check alone would
// let dates like 2025-02-31 through, so the value must also parse as a real
// calendar date.
func ParseDateKey(s string) (DateKey, error) {
	if !dateKeyPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q must match YYYY-MM-DD", ErrInvalidDate, s)
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDate, s)
	}
	return DateKey(s), nil
}

func (d DateKey) String() string {
	return string(d)
}

// ParseFileName validates that s names a file directly inside an attachment
// folder. Separators and parent-directory segments are rejected here so the
// store never has to re-check.
func ParseFileName(s string) (FileName, error) {
	if s == "" || s == "." || s == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, s)
	}
	if strings.ContainsAny(s, `/\`) {
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, s)
	}
	if filepath.Base(filepath.Clean(s)) != s {
		return "", fmt.Errorf("%w: %q is not a plain file name", ErrInvalidName, s)
	}
	return FileName(s), nil
}

func (n FileName) String() string {
	return string(n)
}
