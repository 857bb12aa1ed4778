package attachment

import (
	"errors"
	"fmt"
	"strings"
)

// Errors surfaced to the presentation layer. OS-level copy/delete/open
// failures are wrapped with %w and carry their original cause.
var (
	ErrInvalidDate        = errors.New("invalid date key")
	ErrInvalidName        = errors.New("invalid file name")
	ErrNotFound           = errors.New("attachment not found")
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
)

// Failure records one source path that could not be stored during a batch.
type Failure struct {
	Source string
	Err    error
}

// BatchError aggregates per-file failures from a best-effort AddFiles run.
// Files stored before or after a failing one stay on disk.
type BatchError struct {
	Failures []Failure
}

func (e *BatchError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, fmt.Sprintf("%s: %v", f.Source, f.Err))
	}
	return fmt.Sprintf("failed to store %d file(s): %s", len(e.Failures), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual causes so errors.Is sees through the batch.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}
