package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/mindpilot/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers groups the API handlers mounted under /api.
type Handlers struct {
	Accounts     *AccountHandler
	Tasks        *TaskHandler
	Transactions *TransactionHandler
	Documents    *DocumentHandler
	Wellness     *WellnessHandler
	Goals        *GoalHandler
	Assistant    *AssistantHandler
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Handlers Handlers
	Logger   *slog.Logger

	// RequestID runs first so every later log line can carry the id.
	RequestID func(http.Handler) http.Handler

	// Edge middleware runs on every route after recovery and metrics,
	// outermost first (request logging, security headers).
	Edge []func(http.Handler) http.Handler

	// API middleware guards the /api routes (rate limiting, authentication).
	API []func(http.Handler) http.Handler

	// Health is pinged by GET /health. Nil reports healthy unconditionally.
	Health Pinger

	// Metrics serves /metrics. Nil leaves the route unmounted.
	Metrics http.Handler
}

// NewRouter builds the HTTP handler for the API.
//
// Middleware order: RequestID -> RealIP -> Recoverer -> metrics -> Edge ->
// (API routes only) API -> handler.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	if cfg.RequestID != nil {
		r.Use(cfg.RequestID)
	}
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cfg.Edge...)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundResponse(w, r, logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedResponse(w, r, logger)
	})

	r.Get("/health", healthHandler(cfg.Health, logger))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(cfg.API...)

		h := cfg.Handlers
		for _, registrar := range []interface{ RegisterRoutes(chi.Router) }{
			h.Accounts,
			h.Tasks,
			h.Transactions,
			h.Documents,
			h.Wellness,
			h.Goals,
			h.Assistant,
		} {
			registrar.RegisterRoutes(r)
		}
	})

	return r
}

func healthHandler(pinger Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.PingContext(ctx); err != nil {
				logger.Warn("health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
