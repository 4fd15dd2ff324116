package document

import (
	"context"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/objstore"
)

// BlobStore is the object store surface the document lifecycle consumes (ISP).
type BlobStore interface {
	Exists(ctx context.Context, container, key string) (bool, error)
	objstore.Writer
}

// DocIndex resolves and removes index documents for the delete flow.
type DocIndex interface {
	FindHTMLID(ctx context.Context, pageURL string) (string, error)
	FindPDFID(ctx context.Context, fileName string) (string, error)
	Delete(ctx context.Context, kind domain.DocumentKind, id string) error
}
