// Package search fuses hits from the HTML and PDF indexes into one
// snippeted, cross-referenced result list.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/filename"
	"github.com/kailas-cloud/evidex/internal/domain/search/request"
	"github.com/kailas-cloud/evidex/internal/domain/search/result"
	"github.com/kailas-cloud/evidex/internal/domain/snippet"
	"github.com/kailas-cloud/evidex/internal/domain/textnorm"
	"github.com/kailas-cloud/evidex/internal/metrics"
)

// Pipeline defaults. Every one of them is a Config knob.
const (
	defaultHTMLTop       = 150
	defaultPDFTop        = 20
	defaultEmptyQueryTop = 1000
	defaultCrossRefHits  = 10
	defaultCrossRefURLs  = 2
	defaultContextChars  = 150
	defaultQueryTimeout  = 5 * time.Second
)

// Config tunes the fused search pipeline.
type Config struct {
	// HTMLTop caps HTML-index hits for a text query.
	HTMLTop int
	// PDFTop caps PDF-index hits fetched for cross-referencing.
	PDFTop int
	// EmptyQueryTop caps HTML-index hits when no query text is supplied.
	EmptyQueryTop int
	// CrossRefHits is how many leading HTML hits attempt cross-referencing.
	CrossRefHits int
	// CrossRefURLs is how many leading PDF URLs are examined per hit.
	CrossRefURLs int
	// ContextChars is the snippet window kept on each side of the match.
	ContextChars int
	// QueryTimeout bounds every individual index call.
	QueryTimeout time.Duration
	// ExcludedPDFFragments drops matching URLs from pdf_urls before
	// exposure and cross-referencing.
	ExcludedPDFFragments []string
}

func (c Config) withDefaults() Config {
	if c.HTMLTop <= 0 {
		c.HTMLTop = defaultHTMLTop
	}
	if c.PDFTop <= 0 {
		c.PDFTop = defaultPDFTop
	}
	if c.EmptyQueryTop <= 0 {
		c.EmptyQueryTop = defaultEmptyQueryTop
	}
	if c.CrossRefHits <= 0 {
		c.CrossRefHits = defaultCrossRefHits
	}
	if c.CrossRefURLs <= 0 {
		c.CrossRefURLs = defaultCrossRefURLs
	}
	if c.ContextChars <= 0 {
		c.ContextChars = defaultContextChars
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = defaultQueryTimeout
	}
	return c
}

// Service runs fused search over the HTML and PDF indexes.
type Service struct {
	html   HTMLIndex
	pdf    PDFIndex
	cfg    Config
	snip   snippet.Extractor
	logger *zap.Logger
}

// New creates a fused search service.
func New(html HTMLIndex, pdf PDFIndex, cfg Config, logger *zap.Logger) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		html:   html,
		pdf:    pdf,
		cfg:    cfg,
		snip:   snippet.New(cfg.ContextChars, snippet.FallbackEmpty),
		logger: logger,
	}
}

// Search queries both indexes concurrently, snippets and cross-references
// the HTML hits and assembles the final result list. The PDF index is
// consulted only when query text is present; its failure degrades
// cross-referencing to an error marker instead of failing the request. An
// HTML-index failure aborts with the diagnostics collected so far.
func (s *Service) Search(ctx context.Context, req request.Request) ([]result.Item, error) {
	var diag domain.QueryDiagnostics
	diag.SetSearchText(req.Query().Text())

	filterStr := req.Filter().Expression()
	if filterStr != "" {
		diag.SetFilterString(filterStr)
	}

	top := s.cfg.HTMLTop
	if req.Query().IsEmpty() {
		top = s.cfg.EmptyQueryTop
	}

	var (
		hits    []result.Item
		pdfHits []result.PDFItem
		pdfErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hits, err = s.queryHTML(gctx, req.Query().SearchText(), filterStr, top)
		return err
	})
	if !req.Query().IsEmpty() {
		// A PDF failure degrades cross-referencing, never the request.
		g.Go(func() error {
			pdfHits, pdfErr = s.queryPDF(gctx, req.Query().Text())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.NewDiagnosticError(diag, err)
	}
	if pdfErr != nil {
		s.logger.Warn("pdf index query failed, cross-reference degraded",
			zap.Error(pdfErr))
	}

	out := make([]result.Item, 0, len(hits))
	for idx, hit := range hits {
		item := hit
		if req.Query().IsEmpty() {
			item.Content = textnorm.FirstLines(hit.Content, 1)
		} else {
			item.Content = s.snip.Extract(hit.Content, req.Query().Text())
		}
		item.PDFURLs = filterPDFURLs(hit.PDFURLs, s.cfg.ExcludedPDFFragments)

		if !req.Query().IsEmpty() && idx < s.cfg.CrossRefHits {
			s.crossReference(&item, req.Query().Text(), pdfHits, pdfErr)
		}

		if item.Empty() {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Service) queryHTML(ctx context.Context, text, filter string, top int) ([]result.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	hits, err := s.html.Search(ctx, text, filter, top)
	metrics.IndexQueryDuration.WithLabelValues("html").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IndexQueryErrorsTotal.WithLabelValues("html").Inc()
		return nil, fmt.Errorf("query html index: %w", err)
	}
	return hits, nil
}

func (s *Service) queryPDF(ctx context.Context, text string) ([]result.PDFItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	hits, err := s.pdf.Search(ctx, text, s.cfg.PDFTop)
	metrics.IndexQueryDuration.WithLabelValues("pdf").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.IndexQueryErrorsTotal.WithLabelValues("pdf").Inc()
		return nil, fmt.Errorf("query pdf index: %w", err)
	}
	return hits, nil
}

// crossReference looks for the hit's leading PDF links among the PDF-index
// hits. A stem match on the filename wins: the hit is marked as found in
// both indexes and carries a snippet of the matched PDF's content.
func (s *Service) crossReference(item *result.Item, queryText string, pdfHits []result.PDFItem, pdfErr error) {
	if pdfErr != nil {
		item.FoundInPDF = result.PDFCheckError
		metrics.CrossRefTotal.WithLabelValues("error").Inc()
		return
	}

	urls := item.PDFURLs
	if len(urls) > s.cfg.CrossRefURLs {
		urls = urls[:s.cfg.CrossRefURLs]
	}
	for _, pdfURL := range urls {
		stem := filename.Stem(filename.Basename(pdfURL))
		for _, ph := range pdfHits {
			if ph.FileName == "" {
				continue
			}
			if filename.ExactMatch(stem, filename.Stem(ph.FileName)) {
				item.FoundInPDF = result.FoundInBoth
				item.PDFContent = s.snip.Extract(ph.Content, queryText)
				metrics.CrossRefTotal.WithLabelValues("both").Inc()
				return
			}
		}
	}
	metrics.CrossRefTotal.WithLabelValues("html_only").Inc()
}

// filterPDFURLs drops policy-excluded links (whistleblower-rights notices)
// from a hit's PDF URL list.
func filterPDFURLs(urls, excludedFragments []string) []string {
	if len(urls) == 0 {
		return nil
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if containsAny(u, excludedFragments) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
