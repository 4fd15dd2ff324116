package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/metrics"
)

const (
	// maxPromptChars bounds the page content sent for analysis.
	maxPromptChars = 4000
	// maxCompletionTokens caps the extraction response size.
	maxCompletionTokens = 800
)

const extractionPrompt = `You are a precise content analyzer specializing in AmeriCorps content. Analyze the given content and provide the following:

1. Extract the Status sequence:
- Look for "Status [Open/Closed]"
- Extract only "Open" or "Closed"

2. Extract the CFDA sequence:
- Look for "CFDA number [XX.XXX]"
- Extract only the number (e.g., "94.011")

3. Generate a 4-5 line summary that:
- Focuses on main purpose/goal
- Captures key initiatives/components
- Highlights outcomes and impacts
- Notes key requirements
- Ignores headers and HTML markup

4. Extract a topic from these consolidated categories:
Education & Learning:
- Use 'literacy education' for all literacy and tutoring programs
- Use 'stem education' for all STEM-related education
- Use 'college access support' for all college advising/access programs
- Use 'early childhood education' for all pre-K and early learning
- Use 'youth education' for general youth education programs

Community Development:
- Use 'community development' for general community improvement
- Use 'urban revitalization' for urban renewal/development
- Use 'rural development' for rural community programs

Healthcare & Wellness:
- Use 'healthcare access' for general healthcare programs
- Use 'mental health support' for mental health programs
- Use 'substance abuse prevention' for drug/alcohol programs

Veterans Services:
- Use 'veterans housing support' for housing programs
- Use 'veterans employment services' for job programs
- Use 'veterans support services' for other veterans programs

Youth Services:
- Use 'youth development' for general youth programs
- Use 'youth leadership' for leadership programs
- Use 'youth mentorship' for mentoring programs

Senior Services:
- Use 'senior companionship' for companion programs
- Use 'senior support services' for general senior programs

5. Extract the most relevant year mentioned in the content

Return ONLY a JSON object like:
{
    "Status": "Open",
    "CFDA_number": "94.011",
    "summary": "4-5 line summary here...",
    "topic": "literacy education",
    "year": "2020"
}`

// Extractor derives document metadata from page content via chat completions.
type Extractor struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// NewExtractor creates an OpenAI-compatible metadata extractor.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Extractor{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Extract implements domain.Extractor. A completion that cannot be parsed
// yields empty fields rather than an error: the tokens were still consumed
// and ingestion proceeds without the extracted metadata.
func (e *Extractor) Extract(ctx context.Context, content string) (domain.Extraction, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Analyze this content: " + truncateChars(content, maxPromptChars)},
		},
		MaxTokens: maxCompletionTokens,
		// omitempty drops a literal 0; smallest non-zero keeps sampling greedy.
		Temperature: math.SmallestNonzeroFloat32,
	}

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.ExtractionErrorsTotal.WithLabelValues(e.provider, e.model, "api_error").Inc()
		return domain.Extraction{}, parseAPIError("extraction", err)
	}

	if len(resp.Choices) == 0 {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.ExtractionErrorsTotal.WithLabelValues(e.provider, e.model, "empty_response").Inc()
		return domain.Extraction{}, fmt.Errorf("empty extraction response: %w", domain.ErrProviderError)
	}

	metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	metrics.ExtractionRequestDuration.WithLabelValues(e.provider, e.model).Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	promptTokens := resp.Usage.PromptTokens
	if totalTokens > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(e.provider, e.model, "prompt").Add(float64(promptTokens))
		metrics.ProviderTokensTotal.WithLabelValues(e.provider, e.model, "total").Add(float64(totalTokens))
	}

	extraction := e.parseExtraction(resp.Choices[0].Message.Content)
	extraction.PromptTokens = promptTokens
	extraction.TotalTokens = totalTokens
	return extraction, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseExtraction decodes the model's JSON answer. Markdown code fences are
// stripped first; the literal string "null" reads as empty.
func (e *Extractor) parseExtraction(raw string) domain.Extraction {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		Status     string `json:"Status"`
		CFDANumber string `json:"CFDA_number"`
		Summary    string `json:"summary"`
		Topic      string `json:"topic"`
		Year       string `json:"year"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		metrics.ExtractionErrorsTotal.WithLabelValues(e.provider, e.model, "parse_error").Inc()
		e.logger.Warn("Failed to parse extraction response", zap.String("raw", raw), zap.Error(err))
		return domain.Extraction{}
	}

	return domain.Extraction{
		Status:     cleanNull(parsed.Status),
		CFDANumber: cleanNull(parsed.CFDANumber),
		Summary:    cleanNull(parsed.Summary),
		Topic:      cleanNull(parsed.Topic),
		Year:       cleanNull(parsed.Year),
	}
}

func cleanNull(s string) string {
	if s == "null" {
		return ""
	}
	return s
}

// truncateChars limits s to n characters (not bytes).
func truncateChars(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
