package pdfsearch

import (
	"context"

	"github.com/kailas-cloud/evidex/internal/domain/search/result"
)

// PDFIndex is the read side of the PDF index.
type PDFIndex interface {
	Search(ctx context.Context, text string, top int) ([]result.PDFItem, error)
}
