package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fieldworks/woms/internal/metrics"
	"github.com/fieldworks/woms/internal/observability"
)

// AccessLog records one structured line per request and counts it.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		metrics.RecordRequest()

		logger := observability.ServerLogger
		if logger == nil {
			return
		}
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("tenant_id", GetTenantID(r.Context())))
	})
}
