// Package request holds the validated parameters of a fused search call.
package request

import (
	"github.com/kailas-cloud/evidex/internal/domain/search/filter"
	"github.com/kailas-cloud/evidex/internal/domain/search/query"
)

// Request is a validated search request: free-text query plus structured
// filter predicates. The zero value is the unconstrained match-all request.
type Request struct {
	query  query.Query
	filter filter.Filter
}

// New validates the query text and builds a Request. An empty text is
// allowed and switches search into filter-only mode.
func New(text string, f filter.Filter) (Request, error) {
	q, err := query.New(text)
	if err != nil {
		return Request{}, err
	}
	return Request{query: q, filter: f}, nil
}

// Query returns the free-text part of the request.
func (r Request) Query() query.Query { return r.query }

// Filter returns the structured predicate set.
func (r Request) Filter() filter.Filter { return r.filter }
