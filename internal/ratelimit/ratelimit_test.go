package ratelimit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	require.Equal(t, Config{Window: 15 * time.Minute, MaxRequests: 10}, Strict())
	require.Equal(t, Config{Window: 15 * time.Minute, MaxRequests: 100}, Moderate())
	require.Equal(t, Config{Window: 15 * time.Minute, MaxRequests: 1000}, Lenient())

	cfg, ok := Preset("Strict")
	require.True(t, ok)
	require.Equal(t, 10, cfg.MaxRequests)

	_, ok = Preset("unknown")
	require.False(t, ok)
}

func TestLimiterAllow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	newLimiter := func() *Limiter {
		return New(NewMemoryStore().WithClock(clock)).WithClock(clock)
	}
	cfg := Config{Window: 15 * time.Minute, MaxRequests: 3}

	t.Run("AdmitsUpToLimit", func(t *testing.T) {
		limiter := newLimiter()
		for i := 0; i < 3; i++ {
			decision, err := limiter.Allow(ctx, "ip:1.2.3.4", "read", cfg)
			require.NoError(t, err)
			require.True(t, decision.Allowed)
			require.Equal(t, 3, decision.Limit)
			require.Equal(t, 3-(i+1), decision.Remaining)
		}

		decision, err := limiter.Allow(ctx, "ip:1.2.3.4", "read", cfg)
		require.NoError(t, err)
		require.False(t, decision.Allowed)
		require.Equal(t, 0, decision.Remaining)
		require.Equal(t, 15*time.Minute, decision.RetryAfter)
	})

	t.Run("WindowResets", func(t *testing.T) {
		limiter := newLimiter()
		for i := 0; i < 4; i++ {
			_, _ = limiter.Allow(ctx, "ip:1.2.3.4", "read", cfg)
		}

		now = now.Add(16 * time.Minute)
		defer func() { now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }()

		decision, err := limiter.Allow(ctx, "ip:1.2.3.4", "read", cfg)
		require.NoError(t, err)
		require.True(t, decision.Allowed)
		require.Equal(t, 2, decision.Remaining)
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		limiter := newLimiter()
		for i := 0; i < 4; i++ {
			_, _ = limiter.Allow(ctx, "ip:1.2.3.4", "read", cfg)
		}

		decision, err := limiter.Allow(ctx, "ip:5.6.7.8", "read", cfg)
		require.NoError(t, err)
		require.True(t, decision.Allowed)

		// Same identity, different route: separate budget.
		decision, err = limiter.Allow(ctx, "ip:1.2.3.4", "write", cfg)
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	})

	t.Run("StoreFailureAdmits", func(t *testing.T) {
		limiter := New(failingStore{}).WithClock(clock)

		decision, err := limiter.Allow(ctx, "ip:1.2.3.4", "read", cfg)
		require.Error(t, err)
		require.True(t, decision.Allowed)
	})

	t.Run("ZeroMaxRequestsDisables", func(t *testing.T) {
		limiter := newLimiter()
		decision, err := limiter.Allow(ctx, "ip:1.2.3.4", "read", Config{})
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	})
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func TestClientIdentifier(t *testing.T) {
	t.Run("UserIDWins", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-API-Key", "abc")
		r.Header.Set("X-Forwarded-For", "9.9.9.9")

		require.Equal(t, "user:u1", ClientIdentifier(r, "u1"))
	})

	t.Run("APIKeyBeforeForwarded", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-API-Key", "abc")
		r.Header.Set("X-Forwarded-For", "9.9.9.9")

		require.Equal(t, "key:abc", ClientIdentifier(r, ""))
	})

	t.Run("FirstForwardedHop", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")

		require.Equal(t, "ip:9.9.9.9", ClientIdentifier(r, ""))
	})

	t.Run("FallsBackToRemoteAddr", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "192.0.2.1:5000"

		require.Equal(t, "ip:192.0.2.1", ClientIdentifier(r, ""))
	})
}

func TestMemoryStoreSweep(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })

	_, _, err := store.Hit(context.Background(), "a", time.Minute)
	require.NoError(t, err)
	_, _, err = store.Hit(context.Background(), "b", time.Hour)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	now = now.Add(2 * time.Minute)
	require.Equal(t, 1, store.Sweep())
	require.Equal(t, 1, store.Len())
}
