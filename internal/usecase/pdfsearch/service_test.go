package pdfsearch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/search/result"
)

func TestSearch_RequiresText(t *testing.T) {
	pdf := &mockPDFIndex{}
	svc := newTestService(pdf)

	_, err := svc.Search(context.Background(), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	if pdf.calls != 0 {
		t.Error("index must not be queried without text")
	}
}

func TestSearch_QueryShape(t *testing.T) {
	pdf := &mockPDFIndex{}
	svc := newTestService(pdf)

	if _, err := svc.Search(context.Background(), "tutoring"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pdf.lastText != "tutoring" {
		t.Errorf("unexpected search text: %q", pdf.lastText)
	}
	if pdf.lastTop != 200 {
		t.Errorf("unexpected top: %d", pdf.lastTop)
	}
}

func TestSearch_SnippetsContent(t *testing.T) {
	pdf := &mockPDFIndex{searchFn: func(_ context.Context, _ string, _ int) ([]result.PDFItem, error) {
		return []result.PDFItem{{
			FileName: "TutoringStudy.pdf",
			URL:      "https://americorps.gov/sites/default/files/evidenceexchange/TutoringStudy.pdf",
			ID:       "VHV0b3JpbmdTdHVkeS5wZGY",
			Content:  "<p>The study evaluated tutoring delivered by national service members.</p>",
			Score:    1.7,
		}}, nil
	}}
	svc := newTestService(pdf)

	items, err := svc.Search(context.Background(), "tutoring")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if !strings.Contains(items[0].Content, "tutoring") {
		t.Errorf("snippet misses the match: %q", items[0].Content)
	}
	if strings.Contains(items[0].Content, "<p>") {
		t.Errorf("snippet leaked markup: %q", items[0].Content)
	}
	if items[0].FileName != "TutoringStudy.pdf" || items[0].ID == "" {
		t.Errorf("hit metadata lost: %+v", items[0])
	}
}

func TestSearch_LeadingFallbackOnMiss(t *testing.T) {
	long := strings.Repeat("housing stability evidence ", 40)
	pdf := &mockPDFIndex{searchFn: func(_ context.Context, _ string, _ int) ([]result.PDFItem, error) {
		return []result.PDFItem{{FileName: "Housing.pdf", Content: long}}, nil
	}}
	svc := newTestService(pdf)

	items, err := svc.Search(context.Background(), "literacy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(items[0].Content, "...") {
		t.Errorf("expected leading fallback with ellipsis, got %q", items[0].Content)
	}
	if len(items[0].Content) != 503 {
		t.Errorf("expected 500-char prefix plus ellipsis, got %d chars", len(items[0].Content))
	}
}

func TestSearch_IndexErrorDegrades(t *testing.T) {
	pdf := &mockPDFIndex{searchFn: func(_ context.Context, _ string, _ int) ([]result.PDFItem, error) {
		return nil, errors.New("index down")
	}}
	svc := newTestService(pdf)

	items, err := svc.Search(context.Background(), "tutoring")
	if err != nil {
		t.Fatalf("index failure must degrade, got error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil result list, got %v", items)
	}
}
