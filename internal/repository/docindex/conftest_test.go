package docindex

import (
	"context"
	"testing"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/index"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, q *index.TextQuery) (*index.Result, error)
	applyFn  func(ctx context.Context, indexName string, actions []index.Action) ([]index.ActionResult, error)
}

func (m *mockStore) Search(ctx context.Context, q *index.TextQuery) (*index.Result, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &index.Result{}, nil
}

func (m *mockStore) Apply(
	ctx context.Context, indexName string, actions []index.Action,
) ([]index.ActionResult, error) {
	if m.applyFn != nil {
		return m.applyFn(ctx, indexName, actions)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "html-index", "pdf-index")
	return repo, ms
}

func testHTMLDocument() *domain.HTMLDocument {
	return &domain.HTMLDocument{
		ID:              "doc-1",
		URL:             "https://americorps.gov/evidence-exchange/tutoring-study",
		Title:           "Tutoring Study",
		Content:         "Full page text.",
		Summary:         "A study of tutoring.",
		EmbeddedURLs:    []string{"https://americorps.gov/evidence-exchange/tutoring-study"},
		PDFURLs:         []string{"https://americorps.gov/report.pdf"},
		Programs:        []string{"AmeriCorps State and National"},
		FocusPopulation: []string{"Children/Youth"},
		AgesStudied:     []string{"6-12 (Childhood)"},
		ResourceType:    "Report",
		Domain:          "Education",
		Subdomain1:      "K-12 Success",
		Status:          "Complete",
		CFDANumber:      "94.006",
		Topic:           "Tutoring",
		Year:            "2021",
		PublishedDate:   "2021-06-01",
		ChangedDate:     "2022-01-15",
	}
}

func okResults(key string) []index.ActionResult {
	return []index.ActionResult{{Key: key, Succeeded: true, StatusCode: 200}}
}
