package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/DukeRupert/mindpilot/internal/domain"
)

// ErrorBody is the JSON shape of every error response.
//
// Remaining is only present on quota denials, where it is always 0.
type ErrorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Remaining *int              `json:"remaining,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// ErrorResponse writes an error response to the client.
// It maps domain error codes to HTTP status codes and hides internal details.
func ErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	// Extract structured info from error
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	op := domain.ErrorOp(err)

	// Map to HTTP status
	status := ErrorCodeToHTTPStatus(code)

	// Log error with context
	logError(logger, r, err, code, op, status)

	body := ErrorBody{Code: code, Message: message}
	if code == domain.EQUOTA {
		zero := 0
		body.Remaining = &zero
	}
	if code == domain.EUNAVAILABLE {
		w.Header().Set("Retry-After", "30")
	}
	writeJSON(w, status, body)
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized // 401
	case domain.EFORBIDDEN, domain.EFEATURECAP, domain.EPREMIUM:
		return http.StatusForbidden // 403
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.ECONFLICT:
		return http.StatusConflict // 409
	case domain.ERATELIMIT, domain.EQUOTA:
		return http.StatusTooManyRequests // 429
	case domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	case domain.ENOTIMPL:
		return http.StatusNotImplemented // 501
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}

// ValidationErrorResponse writes field-level validation errors.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		// Not a validation error, fall back to standard error response
		ErrorResponse(w, r, logger, err)
		return
	}

	logger.Info("validation error",
		"op", ve.Op,
		"field_count", len(ve.Fields),
		"path", r.URL.Path,
	)

	writeJSON(w, http.StatusBadRequest, ErrorBody{
		Code:    domain.EINVALID,
		Message: "Validation failed",
		Fields:  ve.Fields,
	})
}

// NotFoundResponse is a convenience wrapper for 404 errors.
func NotFoundResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	err := domain.Errorf(domain.ENOTFOUND, "", "The requested resource was not found")
	ErrorResponse(w, r, logger, err)
}

// UnauthorizedResponse is a convenience wrapper for 401 errors.
func UnauthorizedResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	err := domain.Errorf(domain.EUNAUTHORIZED, "", "Authentication required")
	ErrorResponse(w, r, logger, err)
}

// MethodNotAllowedResponse is a convenience wrapper for 405 errors.
func MethodNotAllowedResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	logger.Info("method not allowed", "path", r.URL.Path, "method", r.Method)
	writeJSON(w, http.StatusMethodNotAllowed, ErrorBody{
		Code:    "method_not_allowed",
		Message: "Method not allowed",
	})
}

// logError logs the error with appropriate level based on status code.
func logError(logger *slog.Logger, r *http.Request, err error, code, op string, status int) {
	attrs := []any{
		"error", err.Error(),
		"code", code,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}

	// Add operation if present
	if op != "" {
		attrs = append(attrs, "op", op)
	}

	// 5xx are server-side problems; 4xx are expected client errors
	if status >= 500 {
		logger.Error("server error", attrs...)
	} else if status >= 400 {
		logger.Info("client error", attrs...)
	}
}
