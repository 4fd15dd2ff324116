// Package ingest implements the three ingestion stages: page enrichment,
// record indexing, and pdf registration. Each stage reads one blob, applies
// its transformation, and retires the blob into the stage's master container
// so a re-run only picks up work that has not completed.
package ingest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/enrich"
	"github.com/kailas-cloud/evidex/internal/domain/record"
	"github.com/kailas-cloud/evidex/internal/objstore"
)

// Containers names the blob containers each ingestion stage reads from and
// retires into.
type Containers struct {
	// HTML holds scraped pages awaiting enrichment.
	HTML string
	// HTMLMaster receives pages whose record has been stored.
	HTMLMaster string
	// JSON holds enriched records awaiting indexing.
	JSON string
	// JSONDone receives records that reached the index.
	JSONDone string
	// PDF holds uploaded files awaiting registration.
	PDF string
	// PDFMaster receives registered files and backs their public URLs.
	PDFMaster string
}

// Config tunes the ingestion stages.
type Config struct {
	Containers Containers
	// PublicBase is the blob endpoint stored documents are addressed under.
	PublicBase string
	// SiteBase resolves site-relative pdf links found in page content.
	SiteBase string
}

func (c Config) withDefaults() Config {
	if c.Containers.HTML == "" {
		c.Containers.HTML = "htmlcontent"
	}
	if c.Containers.HTMLMaster == "" {
		c.Containers.HTMLMaster = "htmlcontent-master"
	}
	if c.Containers.JSON == "" {
		c.Containers.JSON = "html-jsons"
	}
	if c.Containers.JSONDone == "" {
		c.Containers.JSONDone = "successful-jsons"
	}
	if c.Containers.PDF == "" {
		c.Containers.PDF = "evidencefiles"
	}
	if c.Containers.PDFMaster == "" {
		c.Containers.PDFMaster = "evidencefiles-master"
	}
	if c.PublicBase == "" {
		c.PublicBase = "https://americorpevidencestore.blob.core.windows.net"
	}
	if c.SiteBase == "" {
		c.SiteBase = "https://americorps.gov"
	}
	return c
}

// Service runs the ingestion stages.
type Service struct {
	blobs   BlobStore
	index   DocIndex
	extract Extractor
	cfg     Config
	logger  *zap.Logger
}

// New creates an ingestion service.
func New(blobs BlobStore, index DocIndex, extract Extractor, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		blobs:   blobs,
		index:   index,
		extract: extract,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

// EnrichHTML reads an uploaded page, derives its index record, stores the
// record in the json container and retires the page. Metadata extraction is
// best-effort: a provider failure ships the record with empty model fields
// rather than blocking the pipeline.
func (s *Service) EnrichHTML(ctx context.Context, name string) (record.Enriched, error) {
	if name == "" {
		return record.Enriched{}, fmt.Errorf("%w: name is required", domain.ErrInvalidRequest)
	}

	obj, err := s.blobs.Get(ctx, s.cfg.Containers.HTML, name)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return record.Enriched{}, fmt.Errorf("page %s: %w", name, domain.ErrNotFound)
		}
		return record.Enriched{}, fmt.Errorf("read page %s: %w", name, err)
	}

	originalURL := obj.Metadata["original_url"]
	if originalURL == "" {
		s.logger.Warn("page has no original_url metadata", zap.String("blob", name))
	}

	content := string(obj.Data)

	extraction, err := s.extract.Extract(ctx, content)
	if err != nil {
		s.logger.Warn("metadata extraction failed", zap.String("blob", name), zap.Error(err))
		extraction = domain.Extraction{}
	}

	rec := s.buildRecord(name, originalURL, content, extraction)

	data, err := json.Marshal(rec)
	if err != nil {
		return record.Enriched{}, fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	put := &objstore.Object{Data: data, ContentType: "application/json"}
	if err := s.blobs.Put(ctx, s.cfg.Containers.JSON, rec.ID+".json", put); err != nil {
		return record.Enriched{}, fmt.Errorf("store record %s: %w", rec.ID, err)
	}

	// The record is safely stored; a failed retire leaves the page behind
	// for a retry, which overwrites the record idempotently.
	if err := objstore.Move(ctx, s.blobs, s.cfg.Containers.HTML, s.cfg.Containers.HTMLMaster, name); err != nil {
		s.logger.Warn("retire page failed", zap.String("blob", name), zap.Error(err))
	}

	s.logger.Info("page enriched", zap.String("blob", name), zap.String("record", rec.ID))
	return rec, nil
}

// IndexJSON reads an enriched record, normalizes it into the HTML index
// shape, upserts it and retires the record blob. It returns the indexed
// document id.
func (s *Service) IndexJSON(ctx context.Context, name string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		return "", fmt.Errorf("%w: %s is not a json file", domain.ErrInvalidRequest, name)
	}

	obj, err := s.blobs.Get(ctx, s.cfg.Containers.JSON, name)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return "", fmt.Errorf("record %s: %w", name, domain.ErrNotFound)
		}
		return "", fmt.Errorf("read record %s: %w", name, err)
	}

	doc, err := record.Normalize(obj.Data)
	if err != nil {
		return "", fmt.Errorf("record %s: %w", name, err)
	}

	if err := s.index.UpsertHTML(ctx, doc); err != nil {
		return "", fmt.Errorf("index record %s: %w", name, err)
	}

	if err := objstore.Move(ctx, s.blobs, s.cfg.Containers.JSON, s.cfg.Containers.JSONDone, name); err != nil {
		s.logger.Warn("retire record failed", zap.String("blob", name), zap.Error(err))
	}

	s.logger.Info("record indexed", zap.String("blob", name), zap.String("document", doc.ID))
	return doc.ID, nil
}

// RegisterPDF registers an uploaded pdf in the PDF index and retires the
// file into the master container that backs its public URL. Content stays
// nil: the index-side extractor fills it in asynchronously.
func (s *Service) RegisterPDF(ctx context.Context, name string) (domain.PDFDocument, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return domain.PDFDocument{}, fmt.Errorf("%w: %s is not a pdf file", domain.ErrInvalidRequest, name)
	}

	ok, err := s.blobs.Exists(ctx, s.cfg.Containers.PDF, name)
	if err != nil {
		return domain.PDFDocument{}, fmt.Errorf("check pdf %s: %w", name, err)
	}
	if !ok {
		return domain.PDFDocument{}, fmt.Errorf("pdf %s: %w", name, domain.ErrNotFound)
	}

	doc := domain.PDFDocument{
		ID:       base64.RawURLEncoding.EncodeToString([]byte(name)),
		FileName: name,
		URL:      s.cfg.PublicBase + "/" + s.cfg.Containers.PDFMaster + "/" + name,
	}
	if err := s.index.UpsertPDF(ctx, &doc); err != nil {
		return domain.PDFDocument{}, fmt.Errorf("register pdf %s: %w", name, err)
	}

	if err := objstore.Move(ctx, s.blobs, s.cfg.Containers.PDF, s.cfg.Containers.PDFMaster, name); err != nil {
		s.logger.Warn("retire pdf failed", zap.String("blob", name), zap.Error(err))
	}

	s.logger.Info("pdf registered", zap.String("blob", name), zap.String("document", doc.ID))
	return doc, nil
}

// buildRecord assembles the enriched record for one page.
func (s *Service) buildRecord(name, originalURL, content string, ex domain.Extraction) record.Enriched {
	parts := enrich.SplitURL(originalURL)
	cats := enrich.MatchCategories(content)
	blobURL := s.cfg.PublicBase + "/" + s.cfg.Containers.HTML + "/" + name

	resourceType := parts.Domain
	if resourceType == "" {
		resourceType = "others"
	}

	return record.Enriched{
		ID:              enrich.FilenameFromURL(blobURL),
		URL:             originalURL,
		Title:           parts.Title,
		Content:         content,
		Summary:         ex.Summary,
		EmbeddedURLs:    enrich.EmbeddedURLs(content),
		PDFURLs:         enrich.PDFURLs(content, s.cfg.SiteBase),
		Programs:        enrich.JoinValues(cats.Programs),
		FocusPopulation: cats.FocusPopulation,
		AgesStudied:     cats.AgesStudied,
		ResourceType:    resourceType,
		Domain:          parts.Domain,
		Subdomain1:      parts.Subdomain1,
		Subdomain2:      parts.Subdomain2,
		Subdomain3:      parts.Subdomain3,
		Status:          ex.Status,
		CFDANumber:      ex.CFDANumber,
		Topic:           ex.Topic,
		Year:            ex.Year,
	}
}
