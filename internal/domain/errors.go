package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing index document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidRequest signals a request that fails validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrProviderQuotaExceeded signals an exhausted model provider budget.
	ErrProviderQuotaExceeded = errors.New("provider quota exceeded")
	// ErrProviderError signals a model provider failure.
	ErrProviderError = errors.New("provider error")
	// ErrIndexUnavailable signals that a search index cannot be reached.
	ErrIndexUnavailable = errors.New("search index unavailable")
)

// QueryDiagnostics is the request context carried to the error boundary:
// whatever was computed before the failure point is reported back in the
// error payload instead of being guessed there.
type QueryDiagnostics struct {
	SearchText   *string
	FilterString *string
}

// SetSearchText records the raw query text once it has been read.
func (d *QueryDiagnostics) SetSearchText(s string) {
	d.SearchText = &s
}

// SetFilterString records the filter expression once it has been built.
func (d *QueryDiagnostics) SetFilterString(s string) {
	d.FilterString = &s
}

// DiagnosticError carries QueryDiagnostics alongside the cause so the
// transport layer can include them in the failure response.
type DiagnosticError struct {
	Diag QueryDiagnostics
	Err  error
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("search failed: %v", e.Err)
}

func (e *DiagnosticError) Unwrap() error { return e.Err }

// NewDiagnosticError wraps err with the diagnostics collected so far.
func NewDiagnosticError(diag QueryDiagnostics, err error) error {
	return &DiagnosticError{Diag: diag, Err: err}
}
