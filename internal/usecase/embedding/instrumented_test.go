package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterProviderMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

type mockExtractor struct {
	result domain.Extraction
	err    error
	calls  int
}

func (m *mockExtractor) Extract(_ context.Context, _ string) (domain.Extraction, error) {
	m.calls++
	return m.result, m.err
}

// --- InstrumentedEmbedder ---

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3},
	}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", nil, zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(result.Embedding))
	}
}

func TestInstrumentedEmbedder_WithUsage(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2},
		PromptTokens: 100,
		TotalTokens:  100,
	}}
	p := NewInstrumentedEmbedder(inner, "test-usage", "test-model-u", nil, zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 2 {
		t.Fatalf("expected 2 dimensions, got %d", len(result.Embedding))
	}
	if result.TotalTokens != 100 {
		t.Fatalf("expected 100 total tokens, got %d", result.TotalTokens)
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	inner := &mockEmbedder{err: fmt.Errorf("api error")}
	p := NewInstrumentedEmbedder(inner, "test-err", "test-model-e", nil, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestInstrumentedEmbedder_BudgetRejection(t *testing.T) {
	budget := NewBudgetTracker("test-budget", 100, 0, BudgetActionReject, zap.NewNop())
	budget.Record(100)

	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3},
	}}
	p := NewInstrumentedEmbedder(inner, "test-budget", "test-model-b", budget, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error when budget exceeded")
	}
	if !errors.Is(err, domain.ErrProviderQuotaExceeded) {
		t.Fatalf("expected domain.ErrProviderQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Fatalf("expected no inner call on rejection, got %d", inner.calls)
	}
}

func TestInstrumentedEmbedder_RecordsBudgetAndMetrics(t *testing.T) {
	budget := NewBudgetTracker("test-record", 1000000, 10000000, BudgetActionReject, zap.NewNop())

	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 500,
		TotalTokens:  500,
	}}
	p := NewInstrumentedEmbedder(inner, "test-record", "test-model-r", budget, zap.NewNop())

	initialDaily := budget.RemainingDaily()
	initialMonthly := budget.RemainingMonthly()

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(result.Embedding))
	}

	newDaily := budget.RemainingDaily()
	newMonthly := budget.RemainingMonthly()

	if newDaily != initialDaily-500 {
		t.Errorf("expected daily remaining to decrease by 500, got %d -> %d", initialDaily, newDaily)
	}
	if newMonthly != initialMonthly-500 {
		t.Errorf("expected monthly remaining to decrease by 500, got %d -> %d", initialMonthly, newMonthly)
	}
}

func TestInstrumentedEmbedder_CollectsRequestUsage(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1},
		TotalTokens: 77,
	}}
	p := NewInstrumentedEmbedder(inner, "test-ctx", "model", nil, zap.NewNop())

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := p.Embed(ctx, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage.TotalTokens != 77 {
		t.Fatalf("expected usage 77, got %d", usage.TotalTokens)
	}
	if !usage.Used {
		t.Fatal("expected usage marked as used")
	}
}

// --- InstrumentedExtractor ---

func TestInstrumentedExtractor_Success(t *testing.T) {
	inner := &mockExtractor{result: domain.Extraction{
		Status:      "Open",
		Topic:       "literacy education",
		TotalTokens: 200,
	}}
	p := NewInstrumentedExtractor(inner, "test", "test-model", nil, zap.NewNop())

	result, err := p.Extract(context.Background(), "page text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "Open" || result.Topic != "literacy education" {
		t.Fatalf("unexpected extraction: %+v", result)
	}
}

func TestInstrumentedExtractor_BudgetRejection(t *testing.T) {
	budget := NewBudgetTracker("test-ext-budget", 100, 0, BudgetActionReject, zap.NewNop())
	budget.Record(100)

	inner := &mockExtractor{result: domain.Extraction{Status: "Open"}}
	p := NewInstrumentedExtractor(inner, "test-ext-budget", "model", budget, zap.NewNop())

	_, err := p.Extract(context.Background(), "page text")
	if !errors.Is(err, domain.ErrProviderQuotaExceeded) {
		t.Fatalf("expected domain.ErrProviderQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Fatalf("expected no inner call on rejection, got %d", inner.calls)
	}
}

func TestInstrumentedExtractor_RecordsBudget(t *testing.T) {
	budget := NewBudgetTracker("test-ext-rec", 1000000, 10000000, BudgetActionReject, zap.NewNop())

	inner := &mockExtractor{result: domain.Extraction{TotalTokens: 450}}
	p := NewInstrumentedExtractor(inner, "test-ext-rec", "model", budget, zap.NewNop())

	initialDaily := budget.RemainingDaily()
	if _, err := p.Extract(context.Background(), "page text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := initialDaily - budget.RemainingDaily(); got != 450 {
		t.Errorf("expected budget decrease of 450, got %d", got)
	}
}

func TestInstrumentedExtractor_InnerError(t *testing.T) {
	inner := &mockExtractor{err: fmt.Errorf("api error")}
	p := NewInstrumentedExtractor(inner, "test-err", "model", nil, zap.NewNop())

	_, err := p.Extract(context.Background(), "page text")
	if err == nil {
		t.Fatal("expected error")
	}
}
