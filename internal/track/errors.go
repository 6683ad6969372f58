package track

import "errors"

var (
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidEntry indicates a structurally invalid time entry.
	ErrInvalidEntry = errors.New("invalid time entry")
)
