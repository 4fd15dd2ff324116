package evidex

import "github.com/kailas-cloud/evidex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound              = domain.ErrNotFound
	ErrDocumentNotFound      = domain.ErrDocumentNotFound
	ErrInvalidRequest        = domain.ErrInvalidRequest
	ErrRateLimited           = domain.ErrRateLimited
	ErrProviderQuotaExceeded = domain.ErrProviderQuotaExceeded
	ErrProviderError         = domain.ErrProviderError
	ErrIndexUnavailable      = domain.ErrIndexUnavailable
)
