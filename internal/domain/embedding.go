package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Extractor derives structured document attributes from page content.
type Extractor interface {
	Extract(ctx context.Context, content string) (Extraction, error)
}

// HealthChecker verifies model provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Extraction is the model-extracted document metadata. Fields the model
// could not determine are empty strings, never the literal "null".
type Extraction struct {
	Status     string
	CFDANumber string
	Summary    string
	Topic      string
	Year       string

	PromptTokens int
	TotalTokens  int
}
