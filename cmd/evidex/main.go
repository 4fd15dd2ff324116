package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/evidex/internal/cache/redis"
	"github.com/kailas-cloud/evidex/internal/config"
	"github.com/kailas-cloud/evidex/internal/domain"
	"github.com/kailas-cloud/evidex/internal/index/azsearch"
	logpkg "github.com/kailas-cloud/evidex/internal/logger"
	"github.com/kailas-cloud/evidex/internal/metrics"
	"github.com/kailas-cloud/evidex/internal/objstore/azblob"
	budgetrepo "github.com/kailas-cloud/evidex/internal/repository/budget"
	"github.com/kailas-cloud/evidex/internal/repository/docindex"
	"github.com/kailas-cloud/evidex/internal/repository/embcache"
	"github.com/kailas-cloud/evidex/internal/repository/htmlindex"
	"github.com/kailas-cloud/evidex/internal/repository/pdfindex"
	chiTransport "github.com/kailas-cloud/evidex/internal/transport/chi"
	openaiProvider "github.com/kailas-cloud/evidex/internal/transport/openai"
	documentuc "github.com/kailas-cloud/evidex/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/evidex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/evidex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/evidex/internal/usecase/ingest"
	pdfsearchuc "github.com/kailas-cloud/evidex/internal/usecase/pdfsearch"
	searchuc "github.com/kailas-cloud/evidex/internal/usecase/search"
	semanticuc "github.com/kailas-cloud/evidex/internal/usecase/semantic"
	usageuc "github.com/kailas-cloud/evidex/internal/usecase/usage"
	"github.com/kailas-cloud/evidex/internal/version"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, logLevel, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting evidex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_endpoint", cfg.SearchService.Endpoint),
		zap.String("html_index", cfg.SearchService.HTMLIndex),
		zap.String("pdf_index", cfg.SearchService.PDFIndex),
	)

	ctx := context.Background()

	// Hot reload: only the log level is safe to retune on a running server.
	go func() {
		err := config.Watch(ctx, env, logger, func(next config.Config) {
			if next.Logging.Level == "" {
				return
			}
			level, err := logpkg.ParseLevel(next.Logging.Level)
			if err != nil {
				logger.Warn("Ignoring reloaded log level", zap.Error(err))
				return
			}
			logLevel.SetLevel(level)
			logger.Info("Log level updated", zap.String("level", next.Logging.Level))
		})
		if err != nil {
			logger.Warn("Config watcher stopped", zap.Error(err))
		}
	}()

	// Register Prometheus metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterProviderMetrics()

	searchClient, err := azsearch.NewClient(azsearch.Config{
		Endpoint:   cfg.SearchService.Endpoint,
		APIKey:     cfg.SearchService.APIKey,
		APIVersion: cfg.SearchService.APIVersion,
		Timeout:    cfg.SearchService.QueryTimeout(),
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("Failed to create search service client", zap.Error(err))
	}

	blobClient, err := azblob.NewClient(azblob.Config{
		Endpoint:   cfg.Storage.Endpoint,
		SASToken:   cfg.Storage.SASToken,
		APIVersion: cfg.Storage.APIVersion,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("Failed to create blob storage client", zap.Error(err))
	}

	// The cache is optional: without it embeddings are recomputed per call
	// and budget counters live in memory only.
	var cacheStore *redis.Store
	if len(cfg.Cache.Addrs) > 0 {
		cacheStore, err = redis.NewStore(redis.Config{
			Addrs:     cfg.Cache.Addrs,
			Password:  cfg.Cache.Password,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := cacheStore.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	var budgetStore embeddinguc.BudgetStore
	if cacheStore != nil {
		budgetStore = budgetrepo.New(cacheStore,
			time.Duration(cfg.Budget.DailyTTLHours)*time.Hour,
			time.Duration(cfg.Budget.MonthTTLHours)*time.Hour,
		)
	}

	embBudget := newBudgetTracker(ctx, "openai-embedding",
		cfg.Budget.EmbeddingDailyTokens, cfg.Budget.MonthlyTokens, cfg.Budget.Action, budgetStore, logger)
	extBudget := newBudgetTracker(ctx, "openai-extraction",
		cfg.Budget.ExtractionDailyTokens, cfg.Budget.MonthlyTokens, cfg.Budget.Action, budgetStore, logger)

	queryEmbedder := buildEmbedder(cfg, cacheStore, checkerOrNil(embBudget), logger)
	extractor := buildExtractor(cfg, checkerOrNil(extBudget), logger)
	logger.Info("Model providers created",
		zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
		zap.String("chat_model", cfg.OpenAI.ChatModel),
	)

	// Repositories
	rewrites := make([]pdfindex.Rewrite, len(cfg.Search.URLRewrites))
	for i, rw := range cfg.Search.URLRewrites {
		rewrites[i] = pdfindex.Rewrite{From: rw.Prefix, To: rw.Replacement}
	}
	htmlRepo := htmlindex.New(searchClient, cfg.SearchService.HTMLIndex)
	pdfRepo := pdfindex.New(searchClient, cfg.SearchService.PDFIndex, rewrites)
	docRepo := docindex.New(searchClient, cfg.SearchService.HTMLIndex, cfg.SearchService.PDFIndex)

	// Use case services
	searchSvc := searchuc.New(htmlRepo, pdfRepo, searchuc.Config{
		HTMLTop:              cfg.Search.HTMLTop,
		PDFTop:               cfg.Search.PDFTop,
		EmptyQueryTop:        cfg.Search.EmptyQueryTop,
		CrossRefHits:         cfg.Search.CrossRefHits,
		CrossRefURLs:         cfg.Search.CrossRefURLs,
		ContextChars:         cfg.Search.ContextChars,
		QueryTimeout:         cfg.SearchService.QueryTimeout(),
		ExcludedPDFFragments: cfg.Search.ExcludedPDFFragments,
	}, logger)
	pdfSvc := pdfsearchuc.New(pdfRepo, pdfsearchuc.Config{
		Top:          cfg.Search.PDFSearchTop,
		ContextChars: cfg.Search.PDFContextChars,
		QueryTimeout: cfg.SearchService.QueryTimeout(),
	}, logger)
	semanticSvc := semanticuc.New(htmlRepo, queryEmbedder, semanticuc.Config{
		Top:           cfg.Search.SemanticTop,
		Configuration: cfg.Search.SemanticConfig,
		VectorField:   cfg.Search.VectorField,
		QueryTimeout:  cfg.SearchService.QueryTimeout(),
	})
	ingestSvc := ingestuc.New(blobClient, docRepo, extractor, ingestuc.Config{
		Containers: ingestuc.Containers{
			HTML:       cfg.Storage.Containers.HTML,
			HTMLMaster: cfg.Storage.Containers.HTMLMaster,
			JSON:       cfg.Storage.Containers.JSON,
			JSONDone:   cfg.Storage.Containers.JSONDone,
			PDF:        cfg.Storage.Containers.PDF,
			PDFMaster:  cfg.Storage.Containers.PDFMaster,
		},
		PublicBase: cfg.Storage.PublicBase,
		SiteBase:   cfg.Storage.SiteBase,
	}, logger)
	documentSvc := documentuc.New(blobClient, docRepo, documentuc.Containers{
		HTML:        cfg.Storage.Containers.HTML,
		HTMLArchive: cfg.Storage.Containers.HTMLArchive,
		JSON:        cfg.Storage.Containers.JSON,
		JSONArchive: cfg.Storage.Containers.JSONArchive,
		PDF:         cfg.Storage.Containers.PDF,
		PDFArchive:  cfg.Storage.Containers.PDFArchive,
	}, logger)
	usageSvc := usageuc.New(readerOrNil(embBudget), readerOrNil(extBudget))

	var cachePinger healthuc.CachePinger
	if cacheStore != nil {
		cachePinger = cacheStore
	}
	healthSvc := healthuc.New(searchClient, cachePinger)

	server := chiTransport.NewServer(
		searchSvc, pdfSvc, semanticSvc, ingestSvc, documentSvc, usageSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.HTTP.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r, chiTransport.RateLimitMiddleware(cfg.HTTP.RateLimitRPS))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newBudgetTracker creates a tracker when any limit is configured, nil
// otherwise. With a store attached the current counters are loaded so a
// restart does not reset spent budget.
func newBudgetTracker(
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

// checkerOrNil avoids the typed-nil-in-interface gotcha:
// (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
func checkerOrNil(b *embeddinguc.BudgetTracker) embeddinguc.BudgetChecker {
	if b == nil {
		return nil
	}
	return b
}

func readerOrNil(b *embeddinguc.BudgetTracker) usageuc.BudgetReader {
	if b == nil {
		return nil
	}
	return b
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented
func buildEmbedder(
	cfg config.Config, cacheStore *redis.Store,
	budget embeddinguc.BudgetChecker, logger *zap.Logger,
) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiProvider.NewEmbedder(&openaiProvider.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if cacheStore != nil {
		embedder = embcache.New(base, cacheStore, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(embedder, "openai", cfg.OpenAI.EmbeddingModel, budget, logger)
}

// buildExtractor assembles the extractor chain: OpenAI -> Instrumented
func buildExtractor(
	cfg config.Config, budget embeddinguc.BudgetChecker, logger *zap.Logger,
) domain.Extractor {
	base := openaiProvider.NewExtractor(&openaiProvider.Config{
		APIKey:   cfg.OpenAI.APIKey,
		BaseURL:  cfg.OpenAI.BaseURL,
		Model:    cfg.OpenAI.ChatModel,
		Provider: "openai",
		Logger:   logger,
	})

	return embeddinguc.NewInstrumentedExtractor(base, "openai", cfg.OpenAI.ChatModel, budget, logger)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
