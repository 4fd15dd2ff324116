package htmlindex

import (
	"context"
	"testing"

	"github.com/kailas-cloud/evidex/internal/index"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn         func(ctx context.Context, q *index.TextQuery) (*index.Result, error)
	searchSemanticFn func(ctx context.Context, q *index.SemanticQuery) (*index.Result, error)
	searchVectorFn   func(ctx context.Context, q *index.VectorQuery) (*index.Result, error)
}

func (m *mockStore) Search(ctx context.Context, q *index.TextQuery) (*index.Result, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &index.Result{}, nil
}

func (m *mockStore) SearchSemantic(ctx context.Context, q *index.SemanticQuery) (*index.Result, error) {
	if m.searchSemanticFn != nil {
		return m.searchSemanticFn(ctx, q)
	}
	return &index.Result{}, nil
}

func (m *mockStore) SearchVector(ctx context.Context, q *index.VectorQuery) (*index.Result, error) {
	if m.searchVectorFn != nil {
		return m.searchVectorFn(ctx, q)
	}
	return &index.Result{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "html-index")
	return repo, ms
}

func testHit() index.Hit {
	return index.Hit{
		Score: 3.2,
		Fields: map[string]any{
			"content":          "Evidence summary.\nSecond line.",
			"embedded_urls":    []any{"https://americorps.gov/a", "https://americorps.gov/b"},
			"programs":         "AmeriCorps State and National; AmeriCorps VISTA",
			"ages_studied":     []any{"6-12 (Childhood)", "13-17 (Adolescent)"},
			"focus_population": "Children/Youth",
			"domain":           "Education",
			"subdomain_1":      "K-12 Success",
			"subdomain_2":      "",
			"subdomain_3":      "",
			"resource_type":    "Report",
			"pdf_urls":         []any{"https://americorps.gov/report.pdf"},
			"title":            "Tutoring Study",
			"topic":            "Tutoring",
			"year":             float64(2021),
			"Status":           "Complete",
			"CFDA_number":      "94.006",
			"summary":          "A study of tutoring.",
			"published_date":   "2021-06-01",
			"changed_date":     "2022-01-15",
		},
	}
}
