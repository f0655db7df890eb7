// Package errors defines the application error envelope and the single
// HTTP boundary that turns any error into a JSON response. Nothing throws
// past this boundary; handlers hand errors here and stop.
package errors

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fieldworks/woms/internal/metrics"
	"github.com/fieldworks/woms/internal/observability"
	"github.com/fieldworks/woms/internal/server/middleware"
)

// Severity classifies how loudly an error is logged.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError is the uniform error envelope used throughout the service.
type AppError struct {
	Code          string
	Message       string
	Severity      Severity
	Details       map[string]any
	CorrelationID string
	Err           error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithDetail attaches a key/value pair to the envelope details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e == nil {
		return nil
	}
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newError(code, message string, severity Severity) *AppError {
	return &AppError{Code: code, Message: message, Severity: severity}
}

// User errors (400-level)

func NewInvalidInputError(message string) *AppError {
	return newError("INVALID_INPUT", message, SeverityLow)
}

func NewValidationError(message string) *AppError {
	return newError("VALIDATION_FAILED", message, SeverityLow)
}

func NewNotFoundError(message string) *AppError {
	return newError("NOT_FOUND", message, SeverityLow)
}

func NewUnauthorizedError(message string) *AppError {
	return newError("UNAUTHORIZED", message, SeverityLow)
}

func NewForbiddenError(message string) *AppError {
	return newError("FORBIDDEN", message, SeverityLow)
}

func NewMethodNotAllowedError(message string) *AppError {
	return newError("METHOD_NOT_ALLOWED", message, SeverityLow)
}

func NewConflictError(message string) *AppError {
	return newError("CONFLICT", message, SeverityMedium)
}

func NewRateLimitedError(message string) *AppError {
	return newError("RATE_LIMITED", message, SeverityLow)
}

// Server errors (500-level)

func NewInternalError(message string) *AppError {
	return newError("INTERNAL_ERROR", message, SeverityHigh)
}

func NewDatabaseError(message string) *AppError {
	return newError("DATABASE_ERROR", message, SeverityHigh)
}

func NewConfigInvalidError(message string) *AppError {
	return newError("CONFIG_INVALID", message, SeverityHigh)
}

func NewServiceUnavailableError(message string) *AppError {
	return newError("SERVICE_UNAVAILABLE", message, SeverityHigh)
}

// Wrap helpers attach a cause and a correlation id pulled from the request context.

func WrapInvalidInput(ctx context.Context, err error, message string) *AppError {
	return wrap(ctx, err, "INVALID_INPUT", message, SeverityLow)
}

func WrapValidationError(ctx context.Context, err error, message string) *AppError {
	return wrap(ctx, err, "VALIDATION_FAILED", message, SeverityLow)
}

func WrapNotFound(ctx context.Context, err error, message string) *AppError {
	return wrap(ctx, err, "NOT_FOUND", message, SeverityLow)
}

func WrapConflict(ctx context.Context, err error, message string) *AppError {
	return wrap(ctx, err, "CONFLICT", message, SeverityMedium)
}

func WrapInternal(ctx context.Context, err error, message string) *AppError {
	return wrap(ctx, err, "INTERNAL_ERROR", message, SeverityHigh)
}

func WrapDatabaseError(ctx context.Context, err error, message string) *AppError {
	return wrap(ctx, err, "DATABASE_ERROR", message, SeverityHigh)
}

func WrapConfigInvalid(ctx context.Context, err error, message string) *AppError {
	return wrap(ctx, err, "CONFIG_INVALID", message, SeverityHigh)
}

func wrap(ctx context.Context, err error, code, message string, severity Severity) *AppError {
	e := newError(code, message, severity)
	e.Err = err
	if ctx != nil {
		e.CorrelationID = middleware.GetRequestID(ctx)
	}
	return e
}

// EnsureEnvelope normalizes any error into an AppError. Unknown errors become
// INTERNAL_ERROR with the cause retained server-side only.
func EnsureEnvelope(err error) *AppError {
	if err == nil {
		return newError("INTERNAL_ERROR", "unexpected nil error", SeverityCritical)
	}
	if envelope, ok := err.(*AppError); ok && envelope != nil {
		return envelope
	}
	e := newError("INTERNAL_ERROR", "An unexpected error occurred", SeverityHigh)
	e.Err = err
	return e
}

// HTTPStatusFromCode resolves the HTTP status code for an error code.
func HTTPStatusFromCode(code string) int {
	switch code {
	case "INVALID_INPUT", "VALIDATION_FAILED":
		return http.StatusBadRequest
	case "NOT_FOUND":
		return http.StatusNotFound
	case "UNAUTHORIZED":
		return http.StatusUnauthorized
	case "FORBIDDEN":
		return http.StatusForbidden
	case "METHOD_NOT_ALLOWED":
		return http.StatusMethodNotAllowed
	case "CONFLICT":
		return http.StatusConflict
	case "RATE_LIMITED":
		return http.StatusTooManyRequests
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorResponse is the uniform boundary shape returned to callers.
type HTTPErrorResponse struct {
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message"`
	Error      string         `json:"error"`
	Timestamp  string         `json:"timestamp"`
	Path       string         `json:"path,omitempty"`
	Method     string         `json:"method,omitempty"`
	RequestID  string         `json:"requestId,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// RespondWithError normalizes the supplied error and writes a JSON response.
// Client-facing messages are sanitized; the full cause is logged server-side.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	if w == nil {
		return
	}

	envelope := EnsureEnvelope(err)
	if envelope.CorrelationID == "" && r != nil {
		envelope.CorrelationID = middleware.GetRequestID(r.Context())
	}

	statusCode := HTTPStatusFromCode(envelope.Code)

	response := HTTPErrorResponse{
		StatusCode: statusCode,
		Message:    Sanitize(envelope.Message),
		Error:      envelope.Code,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		RequestID:  envelope.CorrelationID,
		Details:    envelope.Details,
	}
	if r != nil {
		response.Path = r.URL.Path
		response.Method = r.Method
	}

	logHTTPError(envelope, statusCode)
	metrics.RecordError(envelope.Code)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func logHTTPError(envelope *AppError, statusCode int) {
	logger := observability.ServerLogger
	if logger == nil || envelope == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", statusCode),
	}
	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}
	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("request_id", envelope.CorrelationID))
	}
	if envelope.Err != nil {
		fields = append(fields, zap.Error(envelope.Err))
	}

	switch envelope.Severity {
	case SeverityCritical, SeverityHigh:
		logger.Error(envelope.Message, fields...)
	case SeverityMedium:
		logger.Warn(envelope.Message, fields...)
	default:
		logger.Info(envelope.Message, fields...)
	}
}
