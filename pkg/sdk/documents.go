package evidex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/record"
)

var errNoObjectStore = errors.New("evidex: object store not configured (use WithObjectStore)")

// DocumentsService runs the document lifecycle: upload, the three
// ingestion stages, and delete.
type DocumentsService struct {
	docs   documentUseCase
	ingest ingestUseCase
	obs    *observer
}

// Documents returns the document lifecycle service.
func (c *Client) Documents() *DocumentsService {
	return &DocumentsService{docs: c.documentSvc, ingest: c.ingestSvc, obs: c.obs}
}

// Upload stores a scraped page body for later enrichment.
func (s *DocumentsService) Upload(ctx context.Context, pageURL, body string) (_ Upload, err error) {
	start := time.Now()
	defer func() { s.obs.observe("upload", start, err) }()

	if s.docs == nil {
		return Upload{}, errNoObjectStore
	}
	up, err := s.docs.UploadHTML(ctx, pageURL, body)
	if err != nil {
		return Upload{}, fmt.Errorf("upload: %w", err)
	}
	return Upload{Container: up.Container, Filename: up.Filename, URL: up.URL}, nil
}

// EnrichHTML runs the enrichment stage on one uploaded page blob.
func (s *DocumentsService) EnrichHTML(ctx context.Context, name string) (_ Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe("enrich_html", start, err) }()

	if s.ingest == nil {
		return Record{}, errNoObjectStore
	}
	rec, err := s.ingest.EnrichHTML(ctx, name)
	if err != nil {
		return Record{}, fmt.Errorf("enrich html: %w", err)
	}
	return recordFromEnriched(rec), nil
}

// IndexJSON runs the indexing stage on one enriched record blob and
// returns the indexed document id.
func (s *DocumentsService) IndexJSON(ctx context.Context, name string) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("index_json", start, err) }()

	if s.ingest == nil {
		return "", errNoObjectStore
	}
	id, err := s.ingest.IndexJSON(ctx, name)
	if err != nil {
		return "", fmt.Errorf("index json: %w", err)
	}
	return id, nil
}

// RegisterPDF registers one uploaded PDF blob in the PDF index.
func (s *DocumentsService) RegisterPDF(ctx context.Context, name string) (_ PDFDocument, err error) {
	start := time.Now()
	defer func() { s.obs.observe("register_pdf", start, err) }()

	if s.ingest == nil {
		return PDFDocument{}, errNoObjectStore
	}
	doc, err := s.ingest.RegisterPDF(ctx, name)
	if err != nil {
		return PDFDocument{}, fmt.Errorf("register pdf: %w", err)
	}
	return PDFDocument{ID: doc.ID, FileName: doc.FileName, URL: doc.URL}, nil
}

// Delete retires a document: blobs move to the archive containers and the
// index entry is removed. fileType is "html" (default) or "pdf". The
// returned operations list what actually happened.
func (s *DocumentsService) Delete(ctx context.Context, filename, fileType string) (_ []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("delete", start, err) }()

	if s.docs == nil {
		return nil, errNoObjectStore
	}
	kind, err := domain.ParseDocumentKind(fileType)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	ops, err := s.docs.Delete(ctx, filename, kind)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	return ops, nil
}

func recordFromEnriched(rec record.Enriched) Record {
	return Record{
		ID:              rec.ID,
		URL:             rec.URL,
		Title:           rec.Title,
		Content:         rec.Content,
		Summary:         rec.Summary,
		EmbeddedURLs:    rec.EmbeddedURLs,
		PDFURLs:         rec.PDFURLs,
		Programs:        rec.Programs,
		FocusPopulation: rec.FocusPopulation,
		AgesStudied:     rec.AgesStudied,
		ResourceType:    rec.ResourceType,
		Domain:          rec.Domain,
		Subdomain1:      rec.Subdomain1,
		Subdomain2:      rec.Subdomain2,
		Subdomain3:      rec.Subdomain3,
		Status:          rec.Status,
		CFDANumber:      rec.CFDANumber,
		Topic:           rec.Topic,
		Year:            rec.Year,
	}
}
