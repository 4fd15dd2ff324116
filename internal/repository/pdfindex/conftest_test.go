package pdfindex

import (
	"context"
	"testing"

	"github.com/kailas-cloud/evidex/internal/index"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, q *index.TextQuery) (*index.Result, error)
}

func (m *mockStore) Search(ctx context.Context, q *index.TextQuery) (*index.Result, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &index.Result{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "pdf-index", []Rewrite{
		{
			From: "https://store.blob.example.net/evidencefiles/",
			To:   "https://americorps.gov/sites/default/files/evidenceexchange/",
		},
	})
	return repo, ms
}

func testHit(name string, score float64) index.Hit {
	return index.Hit{
		Score: score,
		Fields: map[string]any{
			"content":   "PDF body text for " + name,
			"file_name": name,
			"url":       "https://store.blob.example.net/evidencefiles/" + name,
			"id":        "id-" + name,
		},
	}
}
