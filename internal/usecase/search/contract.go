package search

import (
	"context"

	"github.com/kailas-cloud/evidex/internal/domain/search/result"
)

// HTMLIndex is the read side of the page index.
type HTMLIndex interface {
	Search(ctx context.Context, text, filter string, top int) ([]result.Item, error)
}

// PDFIndex is the read side of the PDF index.
type PDFIndex interface {
	Search(ctx context.Context, text string, top int) ([]result.PDFItem, error)
}
