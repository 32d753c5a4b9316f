package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/mindpilot/internal/service"
	"github.com/go-chi/chi/v5"
)

// AccountHandler serves the caller's profile and subscription status.
type AccountHandler struct {
	entitlements service.EntitlementService
	logger       *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(entitlements service.EntitlementService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		entitlements: entitlements,
		logger:       logger,
	}
}

// RegisterRoutes mounts the account routes.
//
// Routes:
// - GET /auth/user    -> Me
// - GET /subscription -> Subscription
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/user", h.Me)
	r.Get("/subscription", h.Subscription)
}

// Me returns the authenticated account as upserted by the auth middleware.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Subscription reports premium status and today's AI usage. It never
// changes the counter.
func (h *AccountHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	status, err := h.entitlements.Status(r.Context(), account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
