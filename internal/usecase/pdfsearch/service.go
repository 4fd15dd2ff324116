// Package pdfsearch serves the standalone PDF-index search endpoint.
package pdfsearch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/search/result"
	"github.com/kailas-cloud/evidex/internal/domain/snippet"
	"github.com/kailas-cloud/evidex/internal/metrics"
)

const (
	defaultTop          = 200
	defaultContextChars = 300
	defaultQueryTimeout = 5 * time.Second
)

// Config tunes the standalone PDF search.
type Config struct {
	// Top caps PDF-index hits per query.
	Top int
	// ContextChars is the snippet window kept on each side of the match.
	ContextChars int
	// QueryTimeout bounds the index call.
	QueryTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Top <= 0 {
		c.Top = defaultTop
	}
	if c.ContextChars <= 0 {
		c.ContextChars = defaultContextChars
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = defaultQueryTimeout
	}
	return c
}

// Service searches the PDF index directly.
type Service struct {
	pdf    PDFIndex
	cfg    Config
	snip   snippet.Extractor
	logger *zap.Logger
}

// New creates a PDF search service. Hits that miss the query fall back to
// the leading characters of the document rather than an empty snippet.
func New(pdf PDFIndex, cfg Config, logger *zap.Logger) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		pdf:    pdf,
		cfg:    cfg,
		snip:   snippet.New(cfg.ContextChars, snippet.FallbackLeading),
		logger: logger,
	}
}

// Search queries the PDF index and returns snippeted hits in descending
// score order. Query text is required. An index failure degrades to an
// empty result list instead of failing the request.
func (s *Service) Search(ctx context.Context, text string) ([]result.PDFItem, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: search_text is required", domain.ErrInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	hits, err := s.pdf.Search(ctx, text, s.cfg.Top)
	metrics.IndexQueryDuration.WithLabelValues("pdf").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IndexQueryErrorsTotal.WithLabelValues("pdf").Inc()
		s.logger.Warn("pdf index query failed, returning empty results", zap.Error(err))
		return []result.PDFItem{}, nil
	}

	out := make([]result.PDFItem, 0, len(hits))
	for _, h := range hits {
		h.Content = s.snip.Extract(h.Content, text)
		out = append(out, h)
	}
	return out, nil
}
