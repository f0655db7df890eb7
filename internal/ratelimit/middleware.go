package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/fieldworks/woms/internal/metrics"
	"github.com/fieldworks/woms/internal/observability"
)

// RejectionResponse is the 429 body returned on an exceeded quota.
type RejectionResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

// Middleware guards a route with the given quota. The userID resolver pulls
// the authenticated identity from the request; pass nil when the route has no
// authenticated callers.
func Middleware(limiter *Limiter, route string, cfg Config, userID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var uid string
			if userID != nil {
				uid = userID(r)
			}

			decision, err := limiter.Allow(r.Context(), ClientIdentifier(r, uid), route, cfg)
			if err != nil {
				// Fail-open is the policy, but an outage of the counter
				// store means enforcement has lapsed; make that visible.
				metrics.RecordRateLimitError()
				if observability.ServerLogger != nil {
					observability.ServerLogger.Warn("rate limit store unavailable, admitting request",
						zap.String("route", route),
						zap.Error(err))
				}
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.ResetAt.IsZero() {
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
			}

			if !decision.Allowed {
				metrics.RecordRateLimited()

				message := cfg.Message
				if message == "" {
					message = DefaultMessage
				}

				retryAfter := int(decision.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(RejectionResponse{
					StatusCode: http.StatusTooManyRequests,
					Message:    message,
					Error:      "Rate Limit Exceeded",
					RetryAfter: retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
