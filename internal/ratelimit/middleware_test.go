package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldworks/woms/internal/metrics"
)

func TestMiddleware(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	newServer := func(cfg Config) http.Handler {
		limiter := New(NewMemoryStore().WithClock(clock)).WithClock(clock)
		return Middleware(limiter, "test", cfg, nil)(okHandler)
	}

	t.Run("SetsRateLimitHeaders", func(t *testing.T) {
		handler := newServer(Config{Window: 15 * time.Minute, MaxRequests: 2})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
		require.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("RejectsWithStandardBody", func(t *testing.T) {
		handler := newServer(Config{Window: 15 * time.Minute, MaxRequests: 1})

		r := httptest.NewRequest("GET", "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		require.NotEmpty(t, rec.Header().Get("Retry-After"))

		var body RejectionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, http.StatusTooManyRequests, body.StatusCode)
		require.Equal(t, "Rate Limit Exceeded", body.Error)
		require.Equal(t, DefaultMessage, body.Message)
		require.GreaterOrEqual(t, body.RetryAfter, 1)
	})

	t.Run("CustomMessage", func(t *testing.T) {
		handler := newServer(Config{
			Window:      time.Minute,
			MaxRequests: 1,
			Message:     "sensitive endpoint, slow down",
		})

		r := httptest.NewRequest("POST", "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, r)

		var body RejectionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "sensitive endpoint, slow down", body.Message)
	})

	t.Run("SeparatesIdentities", func(t *testing.T) {
		handler := newServer(Config{Window: time.Minute, MaxRequests: 1})

		first := httptest.NewRequest("GET", "/", nil)
		first.RemoteAddr = "192.0.2.1:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		require.Equal(t, http.StatusOK, rec.Code)

		second := httptest.NewRequest("GET", "/", nil)
		second.RemoteAddr = "192.0.2.2:1000"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, second)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, second)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("UserResolverTakesPriority", func(t *testing.T) {
		limiter := New(NewMemoryStore().WithClock(clock)).WithClock(clock)
		handler := Middleware(limiter, "test", Config{Window: time.Minute, MaxRequests: 1},
			func(r *http.Request) string { return r.Header.Get("X-Test-User") })(okHandler)

		// Same remote address, different users: separate budgets.
		for _, user := range []string{"u1", "u2"} {
			r := httptest.NewRequest("GET", "/", nil)
			r.Header.Set("X-Test-User", user)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, r)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("StoreErrorAdmitsAndIsCounted", func(t *testing.T) {
		metrics.Reset()
		limiter := New(failingStore{}).WithClock(clock)
		handler := Middleware(limiter, "test", Config{Window: time.Minute, MaxRequests: 1}, nil)(okHandler)

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
		require.Equal(t, uint64(3), metrics.Collect().RateLimitErrorsTotal)
	})
}
