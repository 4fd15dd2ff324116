// Package htmlindex is the read side of the HTML document index.
package htmlindex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/evidex/internal/domain/search/result"
	"github.com/kailas-cloud/evidex/internal/index"
)

// store is the consumer interface for HTML index queries (ISP).
type store interface {
	Search(ctx context.Context, q *index.TextQuery) (*index.Result, error)
	SearchSemantic(ctx context.Context, q *index.SemanticQuery) (*index.Result, error)
	SearchVector(ctx context.Context, q *index.VectorQuery) (*index.Result, error)
}

// selectFields lists every document field the search surfaces consume.
var selectFields = []string{
	"content",
	"embedded_urls",
	"programs",
	"ages_studied",
	"focus_population",
	"domain",
	"subdomain_1",
	"subdomain_2",
	"subdomain_3",
	"resource_type",
	"pdf_urls",
	"title",
	"topic",
	"year",
	"Status",
	"CFDA_number",
	"summary",
	"published_date",
	"changed_date",
}

// semanticSelect is the narrower field set of the semantic endpoint.
var semanticSelect = []string{"title", "summary", "content", "domain", "embedded_urls"}

// Repo implements the HTML-index read side.
type Repo struct {
	store     store
	indexName string
}

// New creates an HTML index repository.
func New(s store, indexName string) *Repo {
	return &Repo{store: s, indexName: indexName}
}

// Search runs a keyword query and maps hits onto raw result items (full
// content, no snippets yet).
func (r *Repo) Search(ctx context.Context, text, filter string, top int) ([]result.Item, error) {
	q := &index.TextQuery{
		IndexName:  r.indexName,
		SearchText: text,
		Filter:     filter,
		Select:     selectFields,
		Top:        top,
	}

	res, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.indexName, err)
	}

	items := make([]result.Item, 0, len(res.Hits))
	for _, h := range res.Hits {
		items = append(items, parseHit(h))
	}
	return items, nil
}

// SearchSemantic runs the index's semantic ranker and maps hits onto
// semantic items carrying the reranker score and first extractive caption.
func (r *Repo) SearchSemantic(ctx context.Context, text, configuration string, top int) ([]result.SemanticItem, error) {
	q := &index.SemanticQuery{
		IndexName:     r.indexName,
		SearchText:    text,
		Configuration: configuration,
		Select:        semanticSelect,
		Top:           top,
	}

	res, err := r.store.SearchSemantic(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("semantic search %s: %w", r.indexName, err)
	}

	items := make([]result.SemanticItem, 0, len(res.Hits))
	for _, h := range res.Hits {
		items = append(items, parseSemanticHit(h))
	}
	return items, nil
}

// SearchVector runs nearest-neighbor search over a vector field.
func (r *Repo) SearchVector(ctx context.Context, vector []float32, field string, k int) ([]result.SemanticItem, error) {
	q := &index.VectorQuery{
		IndexName: r.indexName,
		Vector:    vector,
		Fields:    field,
		K:         k,
		Select:    semanticSelect,
	}

	res, err := r.store.SearchVector(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("vector search %s: %w", r.indexName, err)
	}

	items := make([]result.SemanticItem, 0, len(res.Hits))
	for _, h := range res.Hits {
		items = append(items, parseVectorHit(h))
	}
	return items, nil
}
