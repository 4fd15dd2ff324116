package index

import "errors"

// Sentinel errors for index operations.
var (
	ErrIndexNotFound = errors.New("index: not found")
	ErrUnauthorized  = errors.New("index: unauthorized")
	ErrThrottled     = errors.New("index: throttled")
)

// Op constants map to REST operations for error context.
const (
	OpSearch = "docs/search"
	OpApply  = "docs/index"
	OpStats  = "servicestats"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
