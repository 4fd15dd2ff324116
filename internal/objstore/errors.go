package objstore

import "errors"

// Sentinel errors for object store operations.
var (
	ErrNotFound      = errors.New("objstore: not found")
	ErrAlreadyExists = errors.New("objstore: already exists")
	ErrUnauthorized  = errors.New("objstore: unauthorized")
)

// Op constants map to REST operations for error context.
const (
	OpGet       = "blob/get"
	OpHead      = "blob/head"
	OpPut       = "blob/put"
	OpCopy      = "blob/copy"
	OpDelete    = "blob/delete"
	OpContainer = "container/create"
	OpPing      = "account/list"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
