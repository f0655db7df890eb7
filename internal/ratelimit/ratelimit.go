// Package ratelimit implements fixed-window request admission per client
// identity and logical route.
//
// The window is fixed, not sliding: a burst clustered at a window boundary
// can reach up to twice the nominal rate. That trade-off is kept on purpose;
// the counter store is the swappable part, not the algorithm.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultMessage is returned on rejection when a route configures no message.
const DefaultMessage = "Too many requests, please try again later."

// Config describes one route's quota.
type Config struct {
	Window      time.Duration
	MaxRequests int
	Message     string
}

// Named presets. Strict guards sensitive endpoints, lenient covers reads.
func Strict() Config {
	return Config{Window: 15 * time.Minute, MaxRequests: 10}
}

func Moderate() Config {
	return Config{Window: 15 * time.Minute, MaxRequests: 100}
}

func Lenient() Config {
	return Config{Window: 15 * time.Minute, MaxRequests: 1000}
}

// Preset resolves a preset by name.
func Preset(name string) (Config, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "strict":
		return Strict(), true
	case "moderate":
		return Moderate(), true
	case "lenient":
		return Lenient(), true
	}
	return Config{}, false
}

// Store is the counter backend. Hit atomically increments the counter for a
// key in the current fixed window and returns the new count plus the window
// expiry.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Decision is the admission verdict for one request.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter admits or rejects requests against a Store. Construct one at
// startup and inject it; there is no package-level instance.
type Limiter struct {
	store Store
	clock func() time.Time
}

// New creates a limiter over the given store.
func New(store Store) *Limiter {
	return &Limiter{store: store, clock: time.Now}
}

// WithClock overrides the time source. Test helper.
func (l *Limiter) WithClock(clock func() time.Time) *Limiter {
	l.clock = clock
	return l
}

// Allow records one request for identifier on route and decides admission.
// Store failures admit the request: this is advisory control, never an
// availability risk.
func (l *Limiter) Allow(ctx context.Context, identifier, route string, cfg Config) (Decision, error) {
	if l == nil || l.store == nil || cfg.MaxRequests <= 0 {
		return Decision{Allowed: true, Limit: cfg.MaxRequests}, nil
	}

	count, resetAt, err := l.store.Hit(ctx, identifier+":"+route, cfg.Window)
	if err != nil {
		return Decision{Allowed: true, Limit: cfg.MaxRequests, Remaining: cfg.MaxRequests}, err
	}

	remaining := cfg.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	decision := Decision{
		Allowed:   count <= cfg.MaxRequests,
		Limit:     cfg.MaxRequests,
		Remaining: remaining,
		ResetAt:   resetAt,
	}

	if !decision.Allowed {
		retryAfter := resetAt.Sub(l.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		decision.RetryAfter = retryAfter
	}

	return decision, nil
}

func (l *Limiter) now() time.Time {
	if l != nil && l.clock != nil {
		return l.clock()
	}
	return time.Now()
}

// ClientIdentifier resolves the identity a quota is charged to, in priority
// order: authenticated user id, API key header, first forwarded-for hop, raw
// connection address. Authenticated identity is trusted over network-layer
// signals.
func ClientIdentifier(r *http.Request, userID string) string {
	if userID != "" {
		return "user:" + userID
	}

	if apiKey := strings.TrimSpace(r.Header.Get("X-API-Key")); apiKey != "" {
		return "key:" + apiKey
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return "ip:" + first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
