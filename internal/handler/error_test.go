package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest("POST", "/api/ai/chat", nil), testLogger(), err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

// =============================================================================
// Status mapping
// =============================================================================

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.EFEATURECAP, http.StatusForbidden},
		{domain.EPREMIUM, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EQUOTA, http.StatusTooManyRequests},
		{domain.EUNAVAILABLE, http.StatusServiceUnavailable},
		{domain.ENOTIMPL, http.StatusNotImplemented},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"something_else", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

// =============================================================================
// Entitlement denials
// =============================================================================

func TestErrorResponse_QuotaExceeded(t *testing.T) {
	rec, body := serveError(t, domain.QuotaExceeded("entitlement.check_ai_quota", 15, 15))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Daily AI limit reached. Upgrade to Premium for unlimited access.", body["message"])
	assert.Equal(t, float64(0), body["remaining"])
}

func TestErrorResponse_FeatureCapHasNoRemaining(t *testing.T) {
	rec, body := serveError(t, domain.FeatureCapExceeded("goal.create", domain.FeatureActiveGoal, 3, 3))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, body["message"], "limit reached (3)")
	assert.NotContains(t, body, "remaining")
}

func TestErrorResponse_PremiumRequired(t *testing.T) {
	rec, body := serveError(t, domain.PremiumRequired("assistant.analyze_spending", "spending insights"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, domain.EPREMIUM, body["code"])
	assert.Equal(t, "Premium feature. Upgrade to access spending insights.", body["message"])
}

func TestErrorResponse_UnavailableSetsRetryAfter(t *testing.T) {
	rec, body := serveError(t, domain.Unavailable(errors.New("breaker open"), "assistant.chat", "The AI assistant is temporarily unavailable. Please try again."))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.NotContains(t, body["message"], "breaker")
}

// =============================================================================
// Error Response Tests - Security Focus
// =============================================================================

func TestErrorResponse_InternalErrorHidesDetails(t *testing.T) {
	err := domain.Internal(errors.New(`pq: relation "accounts" does not exist`), "account.get", "failed to get account")
	rec, body := serveError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	raw := rec.Body.String()
	for _, leak := range []string{"pq:", "relation", "account.get", "failed to get account"} {
		assert.False(t, strings.Contains(raw, leak), "response leaks %q: %s", leak, raw)
	}
	assert.Equal(t, "An internal error occurred. Please try again later.", body["message"])
}

func TestErrorResponse_UnwrappedErrorReturnsGeneric(t *testing.T) {
	rec, body := serveError(t, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, domain.EINTERNAL, body["code"])
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestErrorResponse_NotFoundDoesNotExposeOp(t *testing.T) {
	rec, _ := serveError(t, domain.NotFound("task.update", "Task", "42"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "task.update")
}

func TestValidationErrorResponse_DoesNotExposeOperationName(t *testing.T) {
	ve := domain.NewValidationError("TaskService.Create", "title", "Title is required")

	rec := httptest.NewRecorder()
	ValidationErrorResponse(rec, httptest.NewRequest("POST", "/api/tasks", nil), testLogger(), ve)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "TaskService")

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, "Title is required", body.Fields["title"])
}

func TestValidationErrorResponse_FallsBackForOtherErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationErrorResponse(rec, httptest.NewRequest("POST", "/api/tasks", nil), testLogger(), domain.Invalid("task.create", "Task title is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Task title is required")
}
