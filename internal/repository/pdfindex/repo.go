// Package pdfindex is the read side of the PDF document index.
package pdfindex

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/evidex/internal/domain/search/result"
	"github.com/kailas-cloud/evidex/internal/index"
)

// store is the consumer interface for PDF index queries (ISP).
type store interface {
	Search(ctx context.Context, q *index.TextQuery) (*index.Result, error)
}

var selectFields = []string{"content", "file_name", "url", "id"}

// Rewrite maps a stored URL prefix to its public form.
type Rewrite struct {
	From string
	To   string
}

// Repo implements the PDF-index read side.
type Repo struct {
	store     store
	indexName string
	rewrites  []Rewrite
}

// New creates a PDF index repository. rewrites are applied to hit URLs in
// order, first match wins.
func New(s store, indexName string, rewrites []Rewrite) *Repo {
	return &Repo{store: s, indexName: indexName, rewrites: rewrites}
}

// Search runs a keyword query over PDF content and returns hits ordered by
// descending score. Content is the full stored text — snippet extraction is
// usecase policy.
func (r *Repo) Search(ctx context.Context, text string, top int) ([]result.PDFItem, error) {
	q := &index.TextQuery{
		IndexName:  r.indexName,
		SearchText: text,
		Select:     selectFields,
		Top:        top,
	}

	res, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.indexName, err)
	}

	items := make([]result.PDFItem, 0, len(res.Hits))
	for _, h := range res.Hits {
		items = append(items, r.parseHit(h))
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	return items, nil
}
