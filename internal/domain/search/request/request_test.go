package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/search/filter"
	"github.com/kailas-cloud/evidex/internal/domain/search/query"
)

func TestNew(t *testing.T) {
	f := filter.Filter{Domain: "education", Programs: []string{"AmeriCorps VISTA"}}

	r, err := New("youth literacy", f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query().Text() != "youth literacy" {
		t.Errorf("Query().Text() = %q", r.Query().Text())
	}
	if r.Filter().Domain != "education" {
		t.Errorf("Filter().Domain = %q", r.Filter().Domain)
	}
	if len(r.Filter().Programs) != 1 {
		t.Errorf("Filter().Programs = %v", r.Filter().Programs)
	}
}

func TestNew_EmptyTextAllowed(t *testing.T) {
	r, err := New("", filter.Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Query().IsEmpty() {
		t.Error("expected empty query")
	}
}

func TestNew_OversizedQueryRejected(t *testing.T) {
	_, err := New(strings.Repeat("q", query.MaxLength+1), filter.Filter{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}
