package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/helpers-app/helpers-api/internal/config"
	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/handler"
	"github.com/helpers-app/helpers-api/internal/infra/cache"
	"github.com/helpers-app/helpers-api/internal/infra/observability"
	"github.com/helpers-app/helpers-api/internal/infra/payment"
	"github.com/helpers-app/helpers-api/internal/infra/resilience"
	"github.com/helpers-app/helpers-api/internal/infra/supabase"
	"github.com/helpers-app/helpers-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		logger.Fatal("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "helpers-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	categoryCache := cache.New[[]domain.ServiceCategory](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")
	uploadBulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Store ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	// --- Gateway ---
	gateway := payment.NewSandbox(logger)

	// --- Services ---
	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)
	catalogSvc := service.NewCatalogService(store, categoryCache, metrics, logger)
	providerSvc := service.NewProviderService(store, store, logger)
	bookingSvc := service.NewBookingService(store, store, store, metrics, logger)
	reviewSvc := service.NewReviewService(store, store, logger)
	paymentSvc := service.NewPaymentService(gateway, store, logger)
	adminSvc := service.NewAdminService(store, store, store, logger)

	uploadSvc, err := service.NewUploadService(cfg.UploadDir, cfg.MaxFileSize, uploadBulkhead, logger)
	if err != nil {
		logger.Fatal("failed to init upload service", zap.Error(err))
	}

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Auth:     authSvc,
		Catalog:  catalogSvc,
		Provider: providerSvc,
		Booking:  bookingSvc,
		Review:   reviewSvc,
		Payment:  paymentSvc,
		Admin:    adminSvc,
		Upload:   uploadSvc,
	}, store, metrics, cfg, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
