package evidex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/evidex/internal/domain/search/filter"
	"github.com/kailas-cloud/evidex/internal/domain/search/mode"
	"github.com/kailas-cloud/evidex/internal/domain/search/request"
	"github.com/kailas-cloud/evidex/internal/domain/search/result"
)

// SearchService runs the fused HTML+PDF search.
type SearchService struct {
	svc searchUseCase
	obs *observer
}

// Search returns the fused search service.
func (c *Client) Search() *SearchService {
	return &SearchService{svc: c.searchSvc, obs: c.obs}
}

// Query runs a fused search: HTML-index hits snippeted and cross-referenced
// against the PDF index. An empty SearchText returns filter-only matches.
func (s *SearchService) Query(ctx context.Context, req SearchRequest) (_ []SearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search", start, err) }()

	domReq, err := request.New(req.SearchText, filter.Filter{
		Programs:        req.Programs,
		AgesStudied:     req.AgesStudied,
		FocusPopulation: req.FocusPopulation,
		Domain:          req.Domain,
		Subdomain1:      req.Subdomain1,
		Subdomain2:      req.Subdomain2,
		Subdomain3:      req.Subdomain3,
		ResourceType:    req.ResourceType,
		Topic:           req.Topic,
		Year:            req.Year,
		Status:          req.Status,
		CFDANumber:      req.CFDANumber,
		Summary:         req.Summary,
		Title:           req.Title,
		PublishedDate:   req.PublishedDate,
		ChangedDate:     req.ChangedDate,
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	items, err := s.svc.Search(ctx, domReq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]SearchResult, len(items))
	for i, item := range items {
		results[i] = searchResultFromItem(item)
	}
	return results, nil
}

func searchResultFromItem(item result.Item) SearchResult {
	return SearchResult{
		Content:         item.Content,
		URL:             item.URL,
		Title:           item.Title,
		Programs:        item.Programs,
		AgesStudied:     item.AgesStudied,
		FocusPopulation: item.FocusPopulation,
		Domain:          item.Domain,
		Subdomain1:      item.Subdomain1,
		Subdomain2:      item.Subdomain2,
		Subdomain3:      item.Subdomain3,
		ResourceType:    item.ResourceType,
		PDFURLs:         item.PDFURLs,
		FoundInPDF:      string(item.FoundInPDF),
		PDFContent:      item.PDFContent,
		Topic:           item.Topic,
		Year:            item.Year,
		Status:          item.Status,
		CFDANumber:      item.CFDANumber,
		Summary:         item.Summary,
		PublishedDate:   item.PublishedDate,
		ChangedDate:     item.ChangedDate,
	}
}

// PDFService queries the PDF index directly.
type PDFService struct {
	svc pdfUseCase
	obs *observer
}

// PDF returns the PDF-index search service.
func (c *Client) PDF() *PDFService {
	return &PDFService{svc: c.pdfSvc, obs: c.obs}
}

// Query searches the PDF index and returns snippeted hits.
func (s *PDFService) Query(ctx context.Context, text string) (_ []PDFResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("pdf_search", start, err) }()

	items, err := s.svc.Search(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("pdf search: %w", err)
	}

	results := make([]PDFResult, len(items))
	for i, item := range items {
		results[i] = PDFResult{
			Content:  item.Content,
			FileName: item.FileName,
			URL:      item.URL,
			ID:       item.ID,
			Score:    item.Score,
		}
	}
	return results, nil
}

// SemanticService runs the semantic and vector search modes.
type SemanticService struct {
	svc semanticUseCase
	obs *observer
}

// Semantic returns the semantic search service.
func (c *Client) Semantic() *SemanticService {
	return &SemanticService{svc: c.semanticSvc, obs: c.obs}
}

// Query searches the HTML index in the given mode. ModeVector requires a
// configured model provider.
func (s *SemanticService) Query(ctx context.Context, text string, m SearchMode) (_ []SemanticResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("semantic_search", start, err) }()

	domMode, err := mode.Parse(string(m))
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	items, err := s.svc.Search(ctx, text, domMode)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	results := make([]SemanticResult, len(items))
	for i, item := range items {
		results[i] = SemanticResult{
			Title:   item.Title,
			Summary: item.Summary,
			Content: item.Content,
			Domain:  item.Domain,
			URL:     item.URL,
			Score:   item.Score,
			Caption: item.Caption,
		}
	}
	return results, nil
}
