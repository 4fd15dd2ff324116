package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/search/mode"
	"github.com/kailas-cloud/evidex/internal/domain/search/result"
)

func TestSearch_RequiresText(t *testing.T) {
	html := &mockHTMLIndex{}
	svc := newTestService(html, &mockEmbedder{})

	_, err := svc.Search(context.Background(), "", mode.Vector)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	if html.semanticCalls+html.vectorCalls != 0 {
		t.Error("index must not be queried without text")
	}
}

func TestSearch_SemanticMode(t *testing.T) {
	html := &mockHTMLIndex{semanticFn: func(_ context.Context, _, _ string, _ int) ([]result.SemanticItem, error) {
		return []result.SemanticItem{{Title: "Tutoring Study", Score: 2.8, Caption: "caption"}}, nil
	}}
	embed := &mockEmbedder{}
	svc := newTestService(html, embed)

	items, err := svc.Search(context.Background(), "tutoring outcomes", mode.Semantic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if html.lastConfig != "my-semantic-config" || html.lastTop != 50 {
		t.Errorf("unexpected query: config=%q top=%d", html.lastConfig, html.lastTop)
	}
	if embed.calls != 0 {
		t.Error("semantic mode must not embed the query")
	}
	if html.vectorCalls != 0 {
		t.Error("semantic mode must not run vector search")
	}
}

func TestSearch_VectorMode(t *testing.T) {
	html := &mockHTMLIndex{vectorFn: func(_ context.Context, _ []float32, _ string, _ int) ([]result.SemanticItem, error) {
		return []result.SemanticItem{{Title: "Tutoring Study", Content: "full content"}}, nil
	}}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 7}}
	svc := newTestService(html, embed)

	items, err := svc.Search(context.Background(), "tutoring outcomes", mode.Vector)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if embed.calls != 1 {
		t.Fatalf("expected one embed call, got %d", embed.calls)
	}
	if len(html.lastVector) != 2 {
		t.Errorf("embedding not passed through: %v", html.lastVector)
	}
	if html.lastField != "content_vector" || html.lastK != 50 {
		t.Errorf("unexpected query: field=%q k=%d", html.lastField, html.lastK)
	}
	if html.semanticCalls != 0 {
		t.Error("vector mode must not run the semantic ranker")
	}
}

func TestSearch_VectorMode_EmbedError(t *testing.T) {
	html := &mockHTMLIndex{}
	embed := &mockEmbedder{err: errors.New("provider down")}
	svc := newTestService(html, embed)

	_, err := svc.Search(context.Background(), "tutoring", mode.Vector)
	if err == nil {
		t.Fatal("expected error")
	}
	if html.vectorCalls != 0 {
		t.Error("vector search must not run after a failed embedding")
	}
}

func TestSearch_SemanticModeError(t *testing.T) {
	html := &mockHTMLIndex{semanticFn: func(_ context.Context, _, _ string, _ int) ([]result.SemanticItem, error) {
		return nil, errors.New("index down")
	}}
	svc := newTestService(html, &mockEmbedder{})

	if _, err := svc.Search(context.Background(), "tutoring", mode.Semantic); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_DefaultConfig(t *testing.T) {
	html := &mockHTMLIndex{}
	svc := New(html, &mockEmbedder{}, Config{})

	if _, err := svc.Search(context.Background(), "tutoring", mode.Semantic); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html.lastConfig != "my-semantic-config" || html.lastTop != 50 {
		t.Errorf("defaults not applied: config=%q top=%d", html.lastConfig, html.lastTop)
	}
}
