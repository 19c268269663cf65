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
	"go.uber.org/zap"

	"github.com/refindlab/refind/internal/config"
	"github.com/refindlab/refind/internal/db"
	dbRedis "github.com/refindlab/refind/internal/db/redis"
	"github.com/refindlab/refind/internal/domain"
	logpkg "github.com/refindlab/refind/internal/logger"
	"github.com/refindlab/refind/internal/metrics"
	catalogrepo "github.com/refindlab/refind/internal/repository/catalog"
	"github.com/refindlab/refind/internal/repository/embcache"
	submissionrepo "github.com/refindlab/refind/internal/repository/submission"
	chiTransport "github.com/refindlab/refind/internal/transport/chi"
	openaiTransport "github.com/refindlab/refind/internal/transport/openai"
	cataloguc "github.com/refindlab/refind/internal/usecase/catalog"
	healthuc "github.com/refindlab/refind/internal/usecase/health"
	rankuc "github.com/refindlab/refind/internal/usecase/rank"
	searchuc "github.com/refindlab/refind/internal/usecase/search"
	semanticuc "github.com/refindlab/refind/internal/usecase/semantic"
	"github.com/refindlab/refind/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting refind API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("ai_enabled", cfg.OpenAI.APIKey != ""),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register AI metrics explicitly (no init())
	metrics.RegisterAIMetrics()

	embedder, completer, analyzer := buildProviders(cfg, store, logger)

	itemRepo := catalogrepo.New(store)
	subRepo := submissionrepo.New(store)

	catalogSvc := cataloguc.New(itemRepo, embedder, analyzer, logger)
	searchSvc := searchuc.New(itemRepo, embedder, analyzer, rankuc.New(logger), logger).
		WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	semanticSvc := semanticuc.New(completer, subRepo, logger).WithLimits(
		time.Duration(cfg.Semantic.TimeoutSec)*time.Second,
		cfg.Semantic.SearchMaxTokens,
		cfg.Semantic.SuggestMaxTokens,
		cfg.Semantic.Temperature,
	)

	healthSvc := healthuc.New(store)
	if hc, ok := embedder.(healthuc.ProviderChecker); ok {
		healthSvc.WithProvider("embedding", hc)
	}
	if hc, ok := completer.(healthuc.ProviderChecker); ok {
		healthSvc.WithProvider("chat", hc)
	}

	server := chiTransport.NewServer(catalogSvc, searchSvc, semanticSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

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

// buildProviders assembles the AI provider chain. An empty API key
// returns nil providers: items are stored without embeddings, searches
// fall back to keyword matching, image search is disabled.
func buildProviders(
	cfg config.Config,
	store db.Store,
	logger *zap.Logger,
) (domain.Embedder, domain.Completer, domain.ImageAnalyzer) {
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OpenAI API key not set, AI features disabled")
		return nil, nil, nil
	}

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.EmbeddingModel,
		Dimensions: cfg.OpenAI.EmbeddingDimensions,
		Logger:     logger,
	})

	// Cached decorator: item refreshes and repeated queries hit the store.
	embedder := embcache.New(
		base, store,
		time.Duration(cfg.OpenAI.CacheTTLHours)*time.Hour,
		metrics.EmbeddingCacheTotal, logger,
	)

	completer := openaiTransport.NewChat(&openaiTransport.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.ChatModel,
		Logger:  logger,
	})

	analyzer := openaiTransport.NewVision(&openaiTransport.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.VisionModel,
		Logger:  logger,
	})

	logger.Info("AI providers created",
		zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
		zap.String("chat_model", cfg.OpenAI.ChatModel),
		zap.String("vision_model", cfg.OpenAI.VisionModel),
	)

	return embedder, completer, analyzer
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
						"code":    "internal_error",
						"message": "internal error",
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
