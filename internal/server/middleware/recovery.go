package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/fieldworks/woms/internal/metrics"
	"github.com/fieldworks/woms/internal/observability"
)

// panicResponse mirrors the boundary error shape without importing the
// errors package (which depends on this one). Panic detail stays in the
// server log only.
type panicResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path,omitempty"`
	Method     string `json:"method,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
}

// Recovery converts handler panics into 500 responses.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				metrics.RecordPanic()

				if logger := observability.ServerLogger; logger != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.String("request_id", GetRequestID(r.Context())),
						zap.ByteString("stack", debug.Stack()))
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(panicResponse{
					StatusCode: http.StatusInternalServerError,
					Message:    "An unexpected error occurred",
					Error:      "INTERNAL_ERROR",
					Timestamp:  time.Now().UTC().Format(time.RFC3339),
					Path:       r.URL.Path,
					Method:     r.Method,
					RequestID:  GetRequestID(r.Context()),
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
