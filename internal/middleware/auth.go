// Package middleware contains HTTP middleware for the MindPilot API.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler
// and are composed on the chi router in handler.NewRouter.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DukeRupert/mindpilot/internal/auth"
	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/handler"
	"github.com/DukeRupert/mindpilot/internal/service"
)

// Header names read by the auth middleware.
const (
	// DevAccountHeader names the account directly. Only honored in dev mode.
	DevAccountHeader = "X-Account-ID"
	// DevEmailHeader optionally supplies the dev account's email.
	DevEmailHeader = "X-Account-Email"
)

// =============================================================================
// Auth Middleware Configuration
// =============================================================================

// AuthMiddleware resolves the caller's identity and loads their account.
//
// Create one instance and use its methods as middleware.
type AuthMiddleware struct {
	verifier auth.TokenVerifier
	accounts service.AccountService
	logger   *slog.Logger
	devMode  bool
}

// NewAuthMiddleware creates an AuthMiddleware that verifies bearer tokens
// with verifier.
func NewAuthMiddleware(verifier auth.TokenVerifier, accounts service.AccountService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		accounts: accounts,
		logger:   logger,
	}
}

// NewDevAuthMiddleware creates an AuthMiddleware that trusts the
// X-Account-ID header. It must never be used in production.
func NewDevAuthMiddleware(accounts service.AccountService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		accounts: accounts,
		logger:   logger,
		devMode:  true,
	}
}

// =============================================================================
// WithAccount Middleware
// =============================================================================

// WithAccount attempts to identify the caller and load their account.
//
// The first authenticated request creates the account from the identity
// claims; later requests only read it unless the claims changed. Requests without valid credentials
// continue without an account; pair with RequireAccount to reject them.
//
// Flow:
//
//	Request -> WithAccount -> Handler
//	           |
//	           +-> Read bearer token (or dev header)
//	           +-> Verify token, load (or create) account
//	           +-> Set account in context (if valid)
//	           +-> Call next handler (always, unless the store fails)
func (m *AuthMiddleware) WithAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := m.identify(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		account, err := m.accounts.Upsert(r.Context(), identity)
		if err != nil {
			if domain.ErrorCode(err) == domain.EUNAUTHORIZED {
				next.ServeHTTP(w, r)
				return
			}
			handler.ErrorResponse(w, r, m.logger, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.SetAccount(r.Context(), account)))
	})
}

// identify extracts the caller's identity. ok is false when the request
// carries no usable credentials.
func (m *AuthMiddleware) identify(r *http.Request) (domain.Identity, bool) {
	if m.devMode {
		id := strings.TrimSpace(r.Header.Get(DevAccountHeader))
		if id == "" {
			return domain.Identity{}, false
		}
		return domain.Identity{Subject: id, Email: r.Header.Get(DevEmailHeader)}, true
	}

	token, ok := bearerToken(r)
	if !ok {
		return domain.Identity{}, false
	}

	identity, err := m.verifier.Verify(r.Context(), token)
	if err != nil {
		level := slog.LevelInfo
		if !errors.Is(err, auth.ErrInvalidToken) {
			// Key fetch or transport failure rather than a bad token.
			level = slog.LevelWarn
		}
		m.logger.Log(r.Context(), level, "token verification failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
		)
		return domain.Identity{}, false
	}
	return identity, true
}

// =============================================================================
// RequireAccount Middleware
// =============================================================================

// RequireAccount rejects requests that WithAccount could not authenticate
// with a 401 JSON error.
//
// IMPORTANT: This middleware must be used AFTER WithAccount in the chain.
func (m *AuthMiddleware) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetAccountFromRequest(r) == nil {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Request Helpers
// =============================================================================

// bearerToken returns the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// =============================================================================
// Compile-time checks
// =============================================================================

var (
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).WithAccount
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).RequireAccount
)
