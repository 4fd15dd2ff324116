package semantic

import (
	"context"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/search/result"
)

// HTMLIndex is the read side of the page index used by the semantic endpoint.
type HTMLIndex interface {
	SearchSemantic(ctx context.Context, text, configuration string, top int) ([]result.SemanticItem, error)
	SearchVector(ctx context.Context, vector []float32, field string, k int) ([]result.SemanticItem, error)
}

// Embedder vectorizes query text for nearest-neighbor search.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
