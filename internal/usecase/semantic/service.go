// Package semantic serves the semantic/vector search endpoint over the
// HTML index.
package semantic

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/search/mode"
	"github.com/kailas-cloud/evidex/internal/domain/search/result"
	"github.com/kailas-cloud/evidex/internal/metrics"
)

const (
	defaultTop           = 50
	defaultConfiguration = "my-semantic-config"
	defaultVectorField   = "content_vector"
	defaultQueryTimeout  = 5 * time.Second
)

// Config tunes the semantic endpoint.
type Config struct {
	// Top caps hits per query in both modes.
	Top int
	// Configuration names the index's semantic ranker configuration.
	Configuration string
	// VectorField names the index field holding content embeddings.
	VectorField string
	// QueryTimeout bounds every index call.
	QueryTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Top <= 0 {
		c.Top = defaultTop
	}
	if c.Configuration == "" {
		c.Configuration = defaultConfiguration
	}
	if c.VectorField == "" {
		c.VectorField = defaultVectorField
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = defaultQueryTimeout
	}
	return c
}

// Service dispatches semantic-endpoint queries by mode.
type Service struct {
	html  HTMLIndex
	embed Embedder
	cfg   Config
}

// New creates a semantic search service.
func New(html HTMLIndex, embed Embedder, cfg Config) *Service {
	return &Service{html: html, embed: embed, cfg: cfg.withDefaults()}
}

// Search runs a semantic-ranker or nearest-neighbor query. Query text is
// required. Unlike fused search, a failing index call here surfaces as the
// request's error.
func (s *Service) Search(ctx context.Context, text string, m mode.Mode) ([]result.SemanticItem, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}

	switch m {
	case mode.Semantic:
		return s.searchSemantic(ctx, text)
	case mode.Vector:
		return s.searchVector(ctx, text)
	default:
		return nil, fmt.Errorf("%w: unsupported search type %q", domain.ErrInvalidRequest, m)
	}
}

func (s *Service) searchSemantic(ctx context.Context, text string) ([]result.SemanticItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	items, err := s.html.SearchSemantic(ctx, text, s.cfg.Configuration, s.cfg.Top)
	metrics.IndexQueryDuration.WithLabelValues("semantic").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IndexQueryErrorsTotal.WithLabelValues("semantic").Inc()
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return items, nil
}

func (s *Service) searchVector(ctx context.Context, text string) ([]result.SemanticItem, error) {
	// Token accounting happens inside the embedder decorator chain.
	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	items, err := s.html.SearchVector(ctx, emb.Embedding, s.cfg.VectorField, s.cfg.Top)
	metrics.IndexQueryDuration.WithLabelValues("vector").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IndexQueryErrorsTotal.WithLabelValues("vector").Inc()
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return items, nil
}
