package ingest

import (
	"context"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/objstore"
)

// BlobStore is the object store surface the ingestion stages consume (ISP).
type BlobStore interface {
	Get(ctx context.Context, container, key string) (*objstore.Object, error)
	Exists(ctx context.Context, container, key string) (bool, error)
	objstore.Writer
}

// DocIndex is the write side of the two document indexes (ISP).
type DocIndex interface {
	UpsertHTML(ctx context.Context, doc *domain.HTMLDocument) error
	UpsertPDF(ctx context.Context, doc *domain.PDFDocument) error
}

// Extractor derives structured metadata from page content.
type Extractor interface {
	Extract(ctx context.Context, content string) (domain.Extraction, error)
}
