package htmlindex

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/evidex/internal/domain/search/result"
	"github.com/kailas-cloud/evidex/internal/index"
)

// --- Search ---

func TestSearch_QueryShape(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchFn = func(_ context.Context, q *index.TextQuery) (*index.Result, error) {
		if q.IndexName != "html-index" {
			t.Errorf("unexpected index name: %s", q.IndexName)
		}
		if q.SearchText != "tutoring" {
			t.Errorf("unexpected search text: %s", q.SearchText)
		}
		if q.Filter != "domain eq 'Education'" {
			t.Errorf("unexpected filter: %s", q.Filter)
		}
		if q.Top != 150 {
			t.Errorf("unexpected top: %d", q.Top)
		}
		if !reflect.DeepEqual(q.Select, selectFields) {
			t.Errorf("unexpected select list: %v", q.Select)
		}
		return &index.Result{}, nil
	}

	_, err := repo.Search(ctx, "tutoring", "domain eq 'Education'", 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_MapsHit(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchFn = func(_ context.Context, _ *index.TextQuery) (*index.Result, error) {
		return &index.Result{Hits: []index.Hit{testHit()}}, nil
	}

	items, err := repo.Search(ctx, "tutoring", "", 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	it := items[0]
	if it.Content != "Evidence summary.\nSecond line." {
		t.Errorf("unexpected content: %q", it.Content)
	}
	if it.URL != "https://americorps.gov/a" {
		t.Errorf("expected first embedded url, got %q", it.URL)
	}
	if !reflect.DeepEqual(it.Programs, []string{"AmeriCorps State and National", "AmeriCorps VISTA"}) {
		t.Errorf("unexpected programs: %v", it.Programs)
	}
	if !reflect.DeepEqual(it.AgesStudied, []string{"6-12 (Childhood)", "13-17 (Adolescent)"}) {
		t.Errorf("unexpected ages: %v", it.AgesStudied)
	}
	if !reflect.DeepEqual(it.FocusPopulation, []string{"Children/Youth"}) {
		t.Errorf("unexpected focus population: %v", it.FocusPopulation)
	}
	if !reflect.DeepEqual(it.PDFURLs, []string{"https://americorps.gov/report.pdf"}) {
		t.Errorf("unexpected pdf urls: %v", it.PDFURLs)
	}
	if it.Year != "2021" {
		t.Errorf("expected numeric year coerced to string, got %q", it.Year)
	}
	if it.Status != "Complete" || it.CFDANumber != "94.006" {
		t.Errorf("unexpected status fields: %q %q", it.Status, it.CFDANumber)
	}
	if it.FoundInPDF != result.FoundOnlyInHTML {
		t.Errorf("expected baseline pdf presence, got %q", it.FoundInPDF)
	}
}

func TestSearch_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchFn = func(_ context.Context, _ *index.TextQuery) (*index.Result, error) {
		return nil, errors.New("boom")
	}

	_, err := repo.Search(ctx, "tutoring", "", 150)
	if err == nil {
		t.Fatal("expected error")
	}
}

// --- SearchSemantic ---

func TestSearchSemantic_QueryShape(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchSemanticFn = func(_ context.Context, q *index.SemanticQuery) (*index.Result, error) {
		if q.IndexName != "html-index" {
			t.Errorf("unexpected index name: %s", q.IndexName)
		}
		if q.Configuration != "my-semantic-config" {
			t.Errorf("unexpected configuration: %s", q.Configuration)
		}
		if q.Top != 50 {
			t.Errorf("unexpected top: %d", q.Top)
		}
		if !reflect.DeepEqual(q.Select, semanticSelect) {
			t.Errorf("unexpected select list: %v", q.Select)
		}
		return &index.Result{}, nil
	}

	_, err := repo.SearchSemantic(ctx, "tutoring", "my-semantic-config", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchSemantic_MapsHit(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchSemanticFn = func(_ context.Context, _ *index.SemanticQuery) (*index.Result, error) {
		return &index.Result{Hits: []index.Hit{{
			RerankerScore: 2.8,
			Captions: []index.Caption{
				{Text: "plain caption", Highlights: "<em>tutoring</em> caption"},
			},
			Fields: map[string]any{
				"title":         "Tutoring Study",
				"summary":       "A study of tutoring.",
				"content":       "full content must not leak",
				"domain":        "Education",
				"embedded_urls": []any{"https://americorps.gov/a"},
			},
		}}}, nil
	}

	items, err := repo.SearchSemantic(ctx, "tutoring", "my-semantic-config", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	it := items[0]
	if it.Score != 2.8 {
		t.Errorf("expected reranker score, got %v", it.Score)
	}
	if it.Caption != "<em>tutoring</em> caption" {
		t.Errorf("expected highlighted caption, got %q", it.Caption)
	}
	if it.Content != "" {
		t.Errorf("semantic hits must not carry content, got %q", it.Content)
	}
	if it.URL != "https://americorps.gov/a" {
		t.Errorf("unexpected url: %q", it.URL)
	}
}

func TestSearchSemantic_CaptionFallsBackToText(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchSemanticFn = func(_ context.Context, _ *index.SemanticQuery) (*index.Result, error) {
		return &index.Result{Hits: []index.Hit{{
			Captions: []index.Caption{{Text: "plain caption"}},
			Fields:   map[string]any{"title": "T"},
		}}}, nil
	}

	items, err := repo.SearchSemantic(ctx, "tutoring", "my-semantic-config", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Caption != "plain caption" {
		t.Errorf("expected text caption, got %q", items[0].Caption)
	}
}

// --- SearchVector ---

func TestSearchVector_QueryShape(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchVectorFn = func(_ context.Context, q *index.VectorQuery) (*index.Result, error) {
		if q.Fields != "content_vector" {
			t.Errorf("unexpected vector field: %s", q.Fields)
		}
		if q.K != 50 {
			t.Errorf("unexpected k: %d", q.K)
		}
		if len(q.Vector) != 3 {
			t.Errorf("unexpected vector: %v", q.Vector)
		}
		return &index.Result{}, nil
	}

	_, err := repo.SearchVector(ctx, []float32{0.1, 0.2, 0.3}, "content_vector", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchVector_MapsHit(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchVectorFn = func(_ context.Context, _ *index.VectorQuery) (*index.Result, error) {
		return &index.Result{Hits: []index.Hit{{
			Fields: map[string]any{
				"title":         "Tutoring Study",
				"content":       "Full document content.",
				"embedded_urls": "https://americorps.gov/a;https://americorps.gov/b",
			},
		}}}, nil
	}

	items, err := repo.SearchVector(ctx, []float32{0.1}, "content_vector", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	it := items[0]
	if it.Content != "Full document content." {
		t.Errorf("expected content carried, got %q", it.Content)
	}
	if it.URL != "https://americorps.gov/a" {
		t.Errorf("expected first of joined urls, got %q", it.URL)
	}
	if it.Caption != "" || it.Score != 0 {
		t.Errorf("vector hits carry no caption or score: %+v", it)
	}
}

// --- dto.go tests ---

func TestParseHit_MissingFields(t *testing.T) {
	it := parseHit(index.Hit{Fields: map[string]any{}})
	if it.Content != "" || it.URL != "" || it.Title != "" {
		t.Errorf("expected empty scalars, got %+v", it)
	}
	if it.Programs != nil || it.PDFURLs != nil {
		t.Errorf("expected nil lists, got %v %v", it.Programs, it.PDFURLs)
	}
	if it.FoundInPDF != result.FoundOnlyInHTML {
		t.Errorf("expected baseline pdf presence, got %q", it.FoundInPDF)
	}
}

func TestStringField_Coercion(t *testing.T) {
	fields := map[string]any{
		"str":  "hello",
		"num":  float64(2019),
		"frac": 0.5,
		"list": []any{"x"},
	}
	if got := stringField(fields, "str"); got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
	if got := stringField(fields, "num"); got != "2019" {
		t.Errorf("expected 2019, got %q", got)
	}
	if got := stringField(fields, "frac"); got != "0.5" {
		t.Errorf("expected 0.5, got %q", got)
	}
	if got := stringField(fields, "list"); got != "" {
		t.Errorf("expected empty for list value, got %q", got)
	}
	if got := stringField(fields, "absent"); got != "" {
		t.Errorf("expected empty for absent key, got %q", got)
	}
}
