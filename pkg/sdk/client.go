package evidex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/evidex/internal/cache/redis"
	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/domain/record"
	"github.com/kailas-cloud/evidex/internal/domain/search/mode"
	"github.com/kailas-cloud/evidex/internal/domain/search/request"
	"github.com/kailas-cloud/evidex/internal/domain/search/result"
	domusage "github.com/kailas-cloud/evidex/internal/domain/usage"
	"github.com/kailas-cloud/evidex/internal/index/azsearch"
	"github.com/kailas-cloud/evidex/internal/metrics"
	"github.com/kailas-cloud/evidex/internal/objstore/azblob"
	budgetrepo "github.com/kailas-cloud/evidex/internal/repository/budget"
	"github.com/kailas-cloud/evidex/internal/repository/docindex"
	"github.com/kailas-cloud/evidex/internal/repository/embcache"
	"github.com/kailas-cloud/evidex/internal/repository/htmlindex"
	"github.com/kailas-cloud/evidex/internal/repository/pdfindex"
	openaiProvider "github.com/kailas-cloud/evidex/internal/transport/openai"
	documentuc "github.com/kailas-cloud/evidex/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/evidex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/evidex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/evidex/internal/usecase/ingest"
	pdfsearchuc "github.com/kailas-cloud/evidex/internal/usecase/pdfsearch"
	searchuc "github.com/kailas-cloud/evidex/internal/usecase/search"
	semanticuc "github.com/kailas-cloud/evidex/internal/usecase/semantic"
	usageuc "github.com/kailas-cloud/evidex/internal/usecase/usage"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the use cases.
type searchUseCase interface {
	Search(ctx context.Context, req request.Request) ([]result.Item, error)
}

type pdfUseCase interface {
	Search(ctx context.Context, text string) ([]result.PDFItem, error)
}

type semanticUseCase interface {
	Search(ctx context.Context, text string, m mode.Mode) ([]result.SemanticItem, error)
}

type ingestUseCase interface {
	EnrichHTML(ctx context.Context, name string) (record.Enriched, error)
	IndexJSON(ctx context.Context, name string) (string, error)
	RegisterPDF(ctx context.Context, name string) (domain.PDFDocument, error)
}

type documentUseCase interface {
	UploadHTML(ctx context.Context, pageURL, body string) (documentuc.Upload, error)
	Delete(ctx context.Context, name string, kind domain.DocumentKind) ([]string, error)
}

type usageUseCase interface {
	GetReport(ctx context.Context, op domusage.Op, period domusage.Period) domusage.Report
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the evidex SDK entry point.
type Client struct {
	searchClient *azsearch.Client
	cacheStore   *redis.Store

	searchSvc   searchUseCase
	pdfSvc      pdfUseCase
	semanticSvc semanticUseCase
	ingestSvc   ingestUseCase
	documentSvc documentUseCase
	usageSvc    usageUseCase
	healthSvc   healthUseCase
	obs         *observer
}

// New creates an evidex Client bound to a search index service. The
// provided context is used for the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		htmlIndex:    "html-files-index",
		pdfIndex:     "pdf-files-index",
		keyPrefix:    "evidex",
		queryTimeout: 5 * time.Second,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.searchEndpoint == "" || cfg.searchAPIKey == "" {
		return nil, errors.New("evidex: search service endpoint and api key required (use WithSearchService)")
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	searchClient, err := azsearch.NewClient(azsearch.Config{
		Endpoint: cfg.searchEndpoint,
		APIKey:   cfg.searchAPIKey,
		Timeout:  cfg.queryTimeout,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("evidex: create search client: %w", err)
	}

	var cacheStore *redis.Store
	if len(cfg.redisAddrs) > 0 {
		cacheStore, err = redis.NewStore(redis.Config{
			Addrs:     cfg.redisAddrs,
			Password:  cfg.redisPassword,
			KeyPrefix: cfg.keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("evidex: create cache store: %w", err)
		}
		if err := cacheStore.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			cacheStore.Close()
			return nil, fmt.Errorf("evidex: cache not ready: %w", err)
		}
	}

	c, err := wireClient(searchClient, cacheStore, cfg, logger, obs)
	if err != nil {
		if cacheStore != nil {
			cacheStore.Close()
		}
		return nil, err
	}
	return c, nil
}

func wireClient(
	searchClient *azsearch.Client, cacheStore *redis.Store,
	cfg *clientConfig, logger *zap.Logger, obs *observer,
) (*Client, error) {
	var budgetStore embeddinguc.BudgetStore
	if cacheStore != nil {
		budgetStore = budgetrepo.New(cacheStore, 48*time.Hour, 62*24*time.Hour)
	}
	ctx := context.Background()
	embBudget := newTracker(ctx, "openai-embedding",
		cfg.budget.EmbeddingDailyTokens, cfg.budget.MonthlyTokens, cfg.budget.Action, budgetStore, logger)
	extBudget := newTracker(ctx, "openai-extraction",
		cfg.budget.ExtractionDailyTokens, cfg.budget.MonthlyTokens, cfg.budget.Action, budgetStore, logger)

	embedder, extractor := buildProviders(cfg, cacheStore, embBudget, extBudget, logger)

	htmlRepo := htmlindex.New(searchClient, cfg.htmlIndex)
	pdfRepo := pdfindex.New(searchClient, cfg.pdfIndex, nil)
	docRepo := docindex.New(searchClient, cfg.htmlIndex, cfg.pdfIndex)

	c := &Client{
		searchClient: searchClient,
		cacheStore:   cacheStore,
		obs:          obs,
	}

	c.searchSvc = searchuc.New(htmlRepo, pdfRepo, searchuc.Config{QueryTimeout: cfg.queryTimeout}, logger)
	c.pdfSvc = pdfsearchuc.New(pdfRepo, pdfsearchuc.Config{QueryTimeout: cfg.queryTimeout}, logger)
	c.semanticSvc = semanticuc.New(htmlRepo, embedder, semanticuc.Config{QueryTimeout: cfg.queryTimeout})

	if cfg.storageEndpoint != "" {
		blobClient, err := azblob.NewClient(azblob.Config{
			Endpoint: cfg.storageEndpoint,
			SASToken: cfg.storageSASToken,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("evidex: create blob storage client: %w", err)
		}
		c.ingestSvc = ingestuc.New(blobClient, docRepo, extractor, ingestuc.Config{}, logger)
		c.documentSvc = documentuc.New(blobClient, docRepo, documentuc.Containers{}, logger)
	}

	var cachePinger healthuc.CachePinger
	if cacheStore != nil {
		cachePinger = cacheStore
	}
	c.healthSvc = healthuc.New(searchClient, cachePinger)
	c.usageSvc = usageuc.New(budgetReader(embBudget), budgetReader(extBudget))

	return c, nil
}

func newTracker(
	ctx context.Context, provider string,
	dailyLimit, monthlyLimit int64, action string,
	store embeddinguc.BudgetStore, logger *zap.Logger,
) *embeddinguc.BudgetTracker {
	if dailyLimit <= 0 && monthlyLimit <= 0 {
		return nil
	}
	budgetAction := embeddinguc.BudgetActionWarn
	if action == "reject" {
		budgetAction = embeddinguc.BudgetActionReject
	}
	tracker := embeddinguc.NewBudgetTracker(provider, dailyLimit, monthlyLimit, budgetAction, logger)
	if store != nil {
		tracker.WithStore(ctx, store)
	}
	return tracker
}

// budgetReader avoids the typed-nil-in-interface gotcha.
func budgetReader(b *embeddinguc.BudgetTracker) usageuc.BudgetReader {
	if b == nil {
		return nil
	}
	return b
}

func buildProviders(
	cfg *clientConfig, cacheStore *redis.Store,
	embBudget, extBudget *embeddinguc.BudgetTracker, logger *zap.Logger,
) (domain.Embedder, domain.Extractor) {
	if cfg.openai.APIKey == "" {
		return noopProvider{}, noopProvider{}
	}

	embeddingModel := cfg.openai.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-ada-002"
	}
	chatModel := cfg.openai.ChatModel
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}

	var embedder domain.Embedder = openaiProvider.NewEmbedder(&openaiProvider.Config{
		APIKey:     cfg.openai.APIKey,
		BaseURL:    cfg.openai.BaseURL,
		Model:      embeddingModel,
		Dimensions: cfg.openai.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})
	if cacheStore != nil {
		embedder = embcache.New(embedder, cacheStore, metrics.EmbeddingCacheTotal, logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, "openai", embeddingModel, checker(embBudget), logger)

	var extractor domain.Extractor = openaiProvider.NewExtractor(&openaiProvider.Config{
		APIKey:   cfg.openai.APIKey,
		BaseURL:  cfg.openai.BaseURL,
		Model:    chatModel,
		Provider: "openai",
		Logger:   logger,
	})
	extractor = embeddinguc.NewInstrumentedExtractor(extractor, "openai", chatModel, checker(extBudget), logger)

	return embedder, extractor
}

func checker(b *embeddinguc.BudgetTracker) embeddinguc.BudgetChecker {
	if b == nil {
		return nil
	}
	return b
}

// noopProvider rejects model provider calls when no provider is configured.
type noopProvider struct{}

func (noopProvider) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New("evidex: model provider not configured (use WithOpenAI)")
}

func (noopProvider) Extract(context.Context, string) (domain.Extraction, error) {
	return domain.Extraction{}, errors.New("evidex: model provider not configured (use WithOpenAI)")
}

// Close releases all resources.
func (c *Client) Close() {
	if c.cacheStore != nil {
		c.cacheStore.Close()
	}
}

// Ping checks search index service connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.searchClient.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
