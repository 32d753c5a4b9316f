package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/DukeRupert/mindpilot/internal/auth"
	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes caps request bodies; chat messages are the largest payload.
const maxBodyBytes = 64 << 10

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return domain.Invalid(op, "Request body is too large")
		case errors.Is(err, io.EOF):
			return domain.Invalid(op, "Request body is required")
		default:
			return domain.Invalid(op, "Request body must be valid JSON")
		}
	}
	return nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request, op, resource string) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NotFound(op, resource, raw)
	}
	return id, nil
}

// queryLimit parses an optional ?limit= parameter; 0 means "use the default".
func queryLimit(r *http.Request, op string) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.Invalid(op, "limit must be a non-negative integer")
	}
	return n, nil
}

// requireAccount returns the authenticated account, writing a 401 when the
// route was mounted without the auth middleware.
func requireAccount(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*domain.Account, bool) {
	account := auth.GetAccountFromRequest(r)
	if account == nil {
		logger.Error("handler called without authenticated account", "path", r.URL.Path)
		UnauthorizedResponse(w, r, logger)
		return nil, false
	}
	return account, true
}

// deleted is the body returned by every successful DELETE.
var deleted = map[string]bool{"success": true}
