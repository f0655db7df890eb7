package middleware

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader is the correlation header echoed on every response.
const RequestIDHeader = "X-Request-ID"

// requestIDContextKey is a custom type to avoid context key collisions
type requestIDContextKey string

const RequestIDContextKey requestIDContextKey = "request_id"

// RequestID attaches a correlation id to each request: an inbound header
// wins, otherwise a fresh UUID is generated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := chimw.GetReqID(r.Context())
		if requestID == "" {
			requestID = r.Header.Get(RequestIDHeader)
		}
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the correlation id from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDContextKey).(string); ok {
		return requestID
	}
	if requestID := chimw.GetReqID(ctx); requestID != "" {
		return requestID
	}
	return ""
}
