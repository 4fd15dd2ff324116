// Package index defines the contract to an externally managed searchable
// document collection: free-text queries with structured filters in, ranked
// hits out, plus batched document actions.
package index

import "context"

// Store is the full index client facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces.
type Store interface {
	Pinger
	Searcher
	Writer
	Close()
}

// Pinger checks index service connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher provides read queries over named indexes.
type Searcher interface {
	Search(ctx context.Context, q *TextQuery) (*Result, error)
	SearchSemantic(ctx context.Context, q *SemanticQuery) (*Result, error)
	SearchVector(ctx context.Context, q *VectorQuery) (*Result, error)
}

// Writer applies document actions to named indexes.
type Writer interface {
	Apply(ctx context.Context, indexName string, actions []Action) ([]ActionResult, error)
}

// TextQuery is the input for a keyword search.
type TextQuery struct {
	IndexName  string
	SearchText string // raw text, or "*" for match-all
	Filter     string // structured filter expression, "" = unfiltered
	Select     []string
	Top        int
	Count      bool // request a total match count alongside the hits
}

// SemanticQuery runs the index's semantic ranker with extractive captions.
type SemanticQuery struct {
	IndexName     string
	SearchText    string
	Configuration string
	Select        []string
	Top           int
}

// VectorQuery is the input for nearest-neighbor search over a vector field.
type VectorQuery struct {
	IndexName string
	Vector    []float32
	Fields    string // vector field name
	K         int
	Select    []string
}

// Result is the output of a search operation.
type Result struct {
	// Total is the index-reported match count when the query asked for one,
	// otherwise the number of returned hits.
	Total int
	Hits  []Hit
}

// Hit is a single document hit. Fields holds the selected document fields;
// values are strings or []any for collection fields.
type Hit struct {
	Score         float64
	RerankerScore float64   // semantic queries only
	Captions      []Caption // semantic queries only
	Fields        map[string]any
}

// Caption is an extractive caption produced by the semantic ranker.
type Caption struct {
	Text       string
	Highlights string
}

// ActionType selects the index edit semantics for one document.
type ActionType string

// Document action constants.
const (
	// ActionUpload inserts or fully replaces a document.
	ActionUpload ActionType = "upload"
	// ActionMergeOrUpload updates the given fields, inserting when absent.
	ActionMergeOrUpload ActionType = "mergeOrUpload"
	// ActionDelete removes a document by key.
	ActionDelete ActionType = "delete"
)

// Action is one document action in an index batch. Doc must contain the
// index key field; for deletes, the key field is sufficient.
type Action struct {
	Type ActionType
	Doc  map[string]any
}

// ActionResult is the per-document outcome of an Apply call.
type ActionResult struct {
	Key        string
	Succeeded  bool
	StatusCode int
	Message    string
}
