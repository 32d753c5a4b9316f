package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/mindpilot/internal"
	"github.com/DukeRupert/mindpilot/internal/ai"
	"github.com/DukeRupert/mindpilot/internal/ai/mock"
	"github.com/DukeRupert/mindpilot/internal/ai/openai"
	"github.com/DukeRupert/mindpilot/internal/auth"
	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/handler"
	"github.com/DukeRupert/mindpilot/internal/middleware"
	"github.com/DukeRupert/mindpilot/internal/repository"
	"github.com/DukeRupert/mindpilot/internal/service"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)
	clock := domain.NewClock(cfg.Location)

	provider, err := newAIProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("ai provider initialization failed: %w", err)
	}

	// ==========================================================================
	// Services
	// ==========================================================================

	accounts := service.NewAccountService(repo, clock, cfg.TrialDuration, logger)
	entitlements := service.NewEntitlementService(repo, clock, logger)
	tasks := service.NewTaskService(repo, clock, logger)
	transactions := service.NewTransactionService(repo, clock, logger)
	documents := service.NewDocumentService(repo, entitlements, logger)
	wellness := service.NewWellnessService(repo, clock, logger)
	goals := service.NewGoalService(repo, entitlements, logger)
	assistant := service.NewAssistantService(service.AssistantDeps{
		Store:        repo,
		Provider:     provider,
		Entitlements: entitlements,
		Goals:        goals,
		Clock:        clock,
		Mode:         service.QuotaMode(cfg.AIQuotaMode),
		Logger:       logger,
	})

	// ==========================================================================
	// Middleware
	// ==========================================================================

	isSecure := !cfg.IsDevelopment()

	var authMw *middleware.AuthMiddleware
	if cfg.AuthMode == "dev" {
		logger.Warn("Development auth enabled: the X-Account-ID header is trusted")
		authMw = middleware.NewDevAuthMiddleware(accounts, logger)
	} else {
		authMw = middleware.NewAuthMiddleware(auth.NewFirebaseVerifier(cfg.FirebaseProjectID), accounts, logger)
	}

	limiter, closeLimiter, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("rate limiter initialization failed: %w", err)
	}
	defer closeLimiter()

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
		if !metricsAuth.Enabled() {
			logger.Warn("Metrics endpoint is unprotected; set METRICS_USERNAME and METRICS_PASSWORD")
		}
		metricsHandler = metricsAuth.Handler(promhttp.Handler())
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	router := handler.NewRouter(handler.RouterConfig{
		Logger:    logger,
		RequestID: middleware.RequestID,
		Edge: []func(http.Handler) http.Handler{
			middleware.NewRequestLoggingMiddleware(logger).Handler,
			middleware.NewSecurityHeadersMiddleware(isSecure).Handler,
		},
		API: []func(http.Handler) http.Handler{
			middleware.NewRateLimitMiddleware(limiter, logger).Limit,
			authMw.WithAccount,
			authMw.RequireAccount,
		},
		Health:  db,
		Metrics: metricsHandler,
		Handlers: handler.Handlers{
			Accounts:     handler.NewAccountHandler(entitlements, logger),
			Tasks:        handler.NewTaskHandler(tasks, assistant, logger),
			Transactions: handler.NewTransactionHandler(transactions, assistant, logger),
			Documents:    handler.NewDocumentHandler(documents, logger),
			Wellness:     handler.NewWellnessHandler(wellness, assistant, logger),
			Goals:        handler.NewGoalHandler(goals, assistant, logger),
			Assistant:    handler.NewAssistantHandler(assistant, logger),
		},
	})

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// AI calls can take as long as the provider timeout
		WriteTimeout: cfg.AIRequestTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started",
			"address", server.Addr,
			"env", cfg.Env,
			"ai_provider", cfg.AIProvider,
			"auth_mode", cfg.AuthMode,
			"quota_mode", cfg.AIQuotaMode,
			"rate_limit_store", limiter.Name(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a failed listener
	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func newAIProvider(cfg *internal.Config, logger *slog.Logger) (ai.Provider, error) {
	if cfg.AIProvider != "openai" {
		logger.Warn("Using mock AI provider")
		return mock.New(logger), nil
	}
	provider, err := openai.New(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		ProviderConfig: ai.ProviderConfig{
			MaxRetries:       cfg.AIMaxRetries,
			RetryBaseDelay:   cfg.AIRetryBaseDelay,
			RequestTimeout:   cfg.AIRequestTimeout,
			BreakerFailures:  uint32(cfg.AIBreakerFailures),
			BreakerOpenDelay: cfg.AIBreakerTimeout,
		},
	}, logger)
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// newLimiter builds the per-IP request limiter and a func that releases it.
func newLimiter(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (middleware.Limiter, func(), error) {
	if cfg.RateLimitStore != "redis" {
		rl := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, logger)
		return rl, rl.Close, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	rl := middleware.NewRedisRateLimiter(client, "mindpilot:ratelimit:", cfg.RateLimitRequests, cfg.RateLimitWindow)
	return rl, func() {
		if err := client.Close(); err != nil {
			logger.Error("Redis close failed", "error", err)
		}
	}, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
