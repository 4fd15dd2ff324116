// Package document implements the page upload and delete lifecycle: raw
// pages enter the object store here, and retired documents leave both the
// store (into archive containers) and their index here.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/enrich"
	"github.com/kailas-cloud/evidex/internal/objstore"
)

// Containers names the blob containers the lifecycle operations touch.
type Containers struct {
	// HTML holds uploaded pages awaiting enrichment.
	HTML string
	// HTMLArchive receives deleted pages.
	HTMLArchive string
	// JSON holds enriched records.
	JSON string
	// JSONArchive receives deleted records.
	JSONArchive string
	// PDF holds uploaded files awaiting registration.
	PDF string
	// PDFArchive receives deleted files.
	PDFArchive string
}

func (c Containers) withDefaults() Containers {
	if c.HTML == "" {
		c.HTML = "htmlcontent"
	}
	if c.HTMLArchive == "" {
		c.HTMLArchive = "htmlcontent-archieve"
	}
	if c.JSON == "" {
		c.JSON = "html-jsons"
	}
	if c.JSONArchive == "" {
		c.JSONArchive = "jsonfiles-archieve"
	}
	if c.PDF == "" {
		c.PDF = "evidencefiles"
	}
	if c.PDFArchive == "" {
		c.PDFArchive = "evidencefiles-archieve"
	}
	return c
}

// Upload is the outcome of an accepted page upload.
type Upload struct {
	Container string
	Filename  string
	URL       string
}

// Service runs the upload and delete lifecycle operations.
type Service struct {
	blobs      BlobStore
	index      DocIndex
	containers Containers
	logger     *zap.Logger
}

// New creates a document lifecycle service.
func New(blobs BlobStore, index DocIndex, containers Containers, logger *zap.Logger) *Service {
	return &Service{
		blobs:      blobs,
		index:      index,
		containers: containers.withDefaults(),
		logger:     logger,
	}
}

// UploadHTML stores a scraped page body under a URL-derived blob name with
// the original URL kept as metadata for the enrichment stage.
func (s *Service) UploadHTML(ctx context.Context, pageURL, body string) (Upload, error) {
	if pageURL == "" || body == "" {
		return Upload{}, fmt.Errorf("%w: url and body are required", domain.ErrInvalidRequest)
	}

	name := enrich.UploadFilename(pageURL)
	obj := &objstore.Object{
		Data:        []byte(body),
		ContentType: "text/html",
		Metadata:    map[string]string{"original_url": pageURL},
	}
	if err := s.blobs.Put(ctx, s.containers.HTML, name, obj); err != nil {
		return Upload{}, fmt.Errorf("store page %s: %w", name, err)
	}

	s.logger.Info("page uploaded",
		zap.String("container", s.containers.HTML),
		zap.String("blob", name),
		zap.String("url", pageURL))
	return Upload{Container: s.containers.HTML, Filename: name, URL: pageURL}, nil
}

// Delete retires a document: its blobs move to the archive containers and
// its index entry is removed. Each step is best-effort and independently
// recorded; the returned operations list what actually happened. When no
// blob moved and no index document was deleted the document does not exist
// and ErrNotFound is returned.
func (s *Service) Delete(ctx context.Context, name string, kind domain.DocumentKind) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidRequest)
	}

	var ops []string
	if kind == domain.KindPDF {
		ops = s.archivePDF(ctx, name)
	} else {
		ops = s.archiveHTML(ctx, name)
	}

	if op := s.deleteFromIndex(ctx, name, kind); op != "" {
		ops = append(ops, op)
	}

	if len(ops) == 0 {
		return nil, fmt.Errorf("document %s: %w", name, domain.ErrNotFound)
	}
	return ops, nil
}

// archiveHTML moves the stored page and its extracted record to the
// archive containers. The blob names are re-derived from the page URL the
// same way the upload and enrichment stages derived them.
func (s *Service) archiveHTML(ctx context.Context, pageURL string) []string {
	var ops []string

	page, doc := enrich.StoredNames(pageURL)
	if s.moveIfPresent(ctx, s.containers.HTML, s.containers.HTMLArchive, page) {
		ops = append(ops, "HTML file moved to archive")
	}
	if s.moveIfPresent(ctx, s.containers.JSON, s.containers.JSONArchive, doc) {
		ops = append(ops, "JSON file moved to archive")
	}
	return ops
}

func (s *Service) archivePDF(ctx context.Context, name string) []string {
	pdf := name
	if !strings.HasSuffix(strings.ToLower(pdf), ".pdf") {
		pdf += ".pdf"
	}
	if s.moveIfPresent(ctx, s.containers.PDF, s.containers.PDFArchive, pdf) {
		return []string{"PDF file moved to archive"}
	}
	return nil
}

// moveIfPresent archives one blob. A missing source is a normal outcome;
// a failed move is logged and reported as not-moved so the caller can
// still count the remaining operations.
func (s *Service) moveIfPresent(ctx context.Context, src, dst, name string) bool {
	ok, err := s.blobs.Exists(ctx, src, name)
	if err != nil {
		s.logger.Warn("archive check failed",
			zap.String("container", src), zap.String("blob", name), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := objstore.Move(ctx, s.blobs, src, dst, name); err != nil {
		s.logger.Warn("archive move failed",
			zap.String("container", src), zap.String("blob", name), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) deleteFromIndex(ctx context.Context, name string, kind domain.DocumentKind) string {
	var (
		id  string
		err error
	)
	if kind == domain.KindPDF {
		pdf := name
		if !strings.HasSuffix(strings.ToLower(pdf), ".pdf") {
			pdf += ".pdf"
		}
		id, err = s.index.FindPDFID(ctx, pdf)
	} else {
		id, err = s.index.FindHTMLID(ctx, name)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			s.logger.Warn("index lookup failed", zap.String("name", name), zap.Error(err))
		}
		return ""
	}

	if err := s.index.Delete(ctx, kind, id); err != nil {
		s.logger.Warn("index delete failed",
			zap.String("name", name), zap.String("id", id), zap.Error(err))
		return ""
	}

	s.logger.Info("document deleted from index",
		zap.String("name", name), zap.String("id", id), zap.String("kind", string(kind)))
	return "Document deleted from search index"
}
