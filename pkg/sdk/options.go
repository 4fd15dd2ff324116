package evidex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// OpenAI holds model provider settings for WithOpenAI.
type OpenAI struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Dimensions     int
}

// Budget holds provider token limits for WithBudget. Zero limits mean
// unlimited.
type Budget struct {
	EmbeddingDailyTokens  int64
	ExtractionDailyTokens int64
	MonthlyTokens         int64
	// Action on an exhausted budget: "warn" (default) or "reject".
	Action string
}

type clientConfig struct {
	searchEndpoint string
	searchAPIKey   string
	htmlIndex      string
	pdfIndex       string
	queryTimeout   time.Duration

	redisAddrs    []string
	redisPassword string
	keyPrefix     string

	storageEndpoint string
	storageSASToken string

	openai OpenAI
	budget Budget

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithSearchService sets the search index service endpoint and API key.
// Required.
func WithSearchService(endpoint, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchEndpoint = endpoint
		c.searchAPIKey = apiKey
	})
}

// WithIndexes overrides the HTML and PDF index names.
// Defaults: "html-files-index" and "pdf-files-index".
func WithIndexes(htmlIndex, pdfIndex string) Option {
	return optionFunc(func(c *clientConfig) {
		c.htmlIndex = htmlIndex
		c.pdfIndex = pdfIndex
	})
}

// WithQueryTimeout bounds every individual index call. Default: 5s.
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryTimeout = d
	})
}

// WithRedis enables the embedding cache and persistent budget counters.
// Without it embeddings are recomputed per call and budgets live in memory.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithObjectStore sets the blob storage endpoint and SAS token. Required
// for the document lifecycle operations (upload, ingest, delete).
func WithObjectStore(endpoint, sasToken string) Option {
	return optionFunc(func(c *clientConfig) {
		c.storageEndpoint = endpoint
		c.storageSASToken = sasToken
	})
}

// WithOpenAI sets the model provider used for vector search and metadata
// extraction. Without it both return an error when called.
func WithOpenAI(o OpenAI) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = o
	})
}

// WithBudget sets provider token budgets.
func WithBudget(b Budget) Option {
	return optionFunc(func(c *clientConfig) {
		c.budget = b
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
