// Package docindex is the write side of both document indexes plus the
// id lookups the delete flow needs.
package docindex

import (
	"context"
	"fmt"

	"github.com/xrash/smetrics"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/index"
)

// store is the consumer interface for index writes and id lookups (ISP).
type store interface {
	Search(ctx context.Context, q *index.TextQuery) (*index.Result, error)
	Apply(ctx context.Context, indexName string, actions []index.Action) ([]index.ActionResult, error)
}

const (
	// findCandidates bounds the free-text candidate set for HTML id lookups.
	findCandidates = 10

	// JaroWinkler parameters for ranking lookup candidates by stored url.
	urlMatchThreshold = 0.8
	jaroWinklerBoost  = 0.7
	jaroWinklerPrefix = 4
)

// Repo implements document index writes.
type Repo struct {
	store     store
	htmlIndex string
	pdfIndex  string
}

// New creates a document index repository.
func New(s store, htmlIndex, pdfIndex string) *Repo {
	return &Repo{store: s, htmlIndex: htmlIndex, pdfIndex: pdfIndex}
}

// UpsertHTML merges the document into the HTML index, creating it when new.
func (r *Repo) UpsertHTML(ctx context.Context, doc *domain.HTMLDocument) error {
	action := index.Action{Type: index.ActionMergeOrUpload, Doc: buildHTMLDoc(doc)}
	return r.apply(ctx, r.htmlIndex, action)
}

// UpsertPDF uploads a PDF registration document.
func (r *Repo) UpsertPDF(ctx context.Context, doc *domain.PDFDocument) error {
	action := index.Action{Type: index.ActionUpload, Doc: buildPDFDoc(doc)}
	return r.apply(ctx, r.pdfIndex, action)
}

// Delete removes a document from the index matching its kind.
func (r *Repo) Delete(ctx context.Context, kind domain.DocumentKind, id string) error {
	action := index.Action{Type: index.ActionDelete, Doc: map[string]any{"id": id}}
	return r.apply(ctx, r.indexFor(kind), action)
}

// FindHTMLID locates the HTML index document for a page URL. Candidates come
// from a free-text search; the best JaroWinkler match of the stored url wins
// when it clears the threshold.
func (r *Repo) FindHTMLID(ctx context.Context, pageURL string) (string, error) {
	q := &index.TextQuery{
		IndexName:  r.htmlIndex,
		SearchText: pageURL,
		Select:     []string{"id", "url"},
		Top:        findCandidates,
		Count:      true,
	}
	res, err := r.store.Search(ctx, q)
	if err != nil {
		return "", fmt.Errorf("find html document: %w", err)
	}

	bestID, bestScore := "", 0.0
	for _, h := range res.Hits {
		id, _ := h.Fields["id"].(string)
		url, _ := h.Fields["url"].(string)
		if id == "" {
			continue
		}
		score := smetrics.JaroWinkler(pageURL, url, jaroWinklerBoost, jaroWinklerPrefix)
		if score > bestScore {
			bestID, bestScore = id, score
		}
	}
	if bestID == "" || bestScore < urlMatchThreshold {
		return "", domain.ErrDocumentNotFound
	}
	return bestID, nil
}

// FindPDFID locates the PDF index document for an exact file name.
func (r *Repo) FindPDFID(ctx context.Context, fileName string) (string, error) {
	q := &index.TextQuery{
		IndexName:  r.pdfIndex,
		SearchText: "*",
		Filter:     fmt.Sprintf("file_name eq '%s'", escapeQuotes(fileName)),
		Select:     []string{"id"},
		Top:        1,
		Count:      true,
	}
	res, err := r.store.Search(ctx, q)
	if err != nil {
		return "", fmt.Errorf("find pdf document: %w", err)
	}
	if len(res.Hits) == 0 {
		return "", domain.ErrDocumentNotFound
	}
	id, _ := res.Hits[0].Fields["id"].(string)
	if id == "" {
		return "", domain.ErrDocumentNotFound
	}
	return id, nil
}

func (r *Repo) indexFor(kind domain.DocumentKind) string {
	if kind == domain.KindPDF {
		return r.pdfIndex
	}
	return r.htmlIndex
}

// apply submits one action and surfaces a per-document failure as an error.
func (r *Repo) apply(ctx context.Context, indexName string, action index.Action) error {
	results, err := r.store.Apply(ctx, indexName, []index.Action{action})
	if err != nil {
		return fmt.Errorf("apply %s to %s: %w", action.Type, indexName, err)
	}
	for _, res := range results {
		if !res.Succeeded {
			return fmt.Errorf("apply %s to %s: document %s: %s", action.Type, indexName, res.Key, res.Message)
		}
	}
	return nil
}
