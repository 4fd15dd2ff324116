// Package query holds the validated free-text part of a search request.
package query

import (
	"fmt"

	"github.com/kailas-cloud/evidex/internal/domain"
)

// MaxLength is the maximum allowed query length.
const MaxLength = 4096

// MatchAll is the index expression for an unconstrained search.
const MatchAll = "*"

// Query is a free-text search query. The zero value is the empty query,
// which matches every document and switches search into filter-only mode.
type Query struct {
	text string
}

// New validates and creates a Query.
func New(text string) (Query, error) {
	if len(text) > MaxLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxLength)
	}
	return Query{text: text}, nil
}

// Text returns the raw query text.
func (q Query) Text() string { return q.text }

// IsEmpty reports whether no query text was supplied.
func (q Query) IsEmpty() bool { return q.text == "" }

// SearchText returns the index-facing search expression: the query text,
// or MatchAll for the empty query.
func (q Query) SearchText() string {
	if q.text == "" {
		return MatchAll
	}
	return q.text
}
