// Package metrics keeps lightweight in-process counters exposed as a JSON
// snapshot on /metrics.
package metrics

import (
	"sync"
	"sync/atomic"
)

var (
	requestsTotal         atomic.Uint64
	rateLimitedTotal      atomic.Uint64
	rateLimitErrorsTotal  atomic.Uint64
	broadcastsTotal       atomic.Uint64
	panicsTotal           atomic.Uint64

	errorsMu    sync.RWMutex
	errorsTotal = make(map[string]uint64)
)

// RecordRequest counts one handled HTTP request.
func RecordRequest() {
	requestsTotal.Add(1)
}

// RecordError counts one error response by error code.
func RecordError(code string) {
	if code == "" {
		code = "UNKNOWN"
	}
	errorsMu.Lock()
	errorsTotal[code]++
	errorsMu.Unlock()
}

// RecordRateLimited counts one 429 rejection.
func RecordRateLimited() {
	rateLimitedTotal.Add(1)
}

// RecordRateLimitError counts one counter-store failure. Each one is a
// request admitted without enforcement.
func RecordRateLimitError() {
	rateLimitErrorsTotal.Add(1)
}

// RecordBroadcast counts one realtime event fan-out.
func RecordBroadcast() {
	broadcastsTotal.Add(1)
}

// RecordPanic counts one recovered handler panic.
func RecordPanic() {
	panicsTotal.Add(1)
}

// Snapshot holds a point-in-time copy of all counters.
type Snapshot struct {
	RequestsTotal        uint64            `json:"requests_total"`
	ErrorsTotal          map[string]uint64 `json:"errors_total"`
	RateLimitedTotal     uint64            `json:"rate_limited_total"`
	RateLimitErrorsTotal uint64            `json:"rate_limit_errors_total"`
	BroadcastsTotal      uint64            `json:"broadcasts_total"`
	PanicsTotal          uint64            `json:"panics_total"`
}

// Collect returns a copy of the current counter values.
func Collect() Snapshot {
	errorsMu.RLock()
	errs := make(map[string]uint64, len(errorsTotal))
	for code, count := range errorsTotal {
		errs[code] = count
	}
	errorsMu.RUnlock()

	return Snapshot{
		RequestsTotal:        requestsTotal.Load(),
		ErrorsTotal:          errs,
		RateLimitedTotal:     rateLimitedTotal.Load(),
		RateLimitErrorsTotal: rateLimitErrorsTotal.Load(),
		BroadcastsTotal:      broadcastsTotal.Load(),
		PanicsTotal:          panicsTotal.Load(),
	}
}

// Reset zeroes all counters. Test helper.
func Reset() {
	requestsTotal.Store(0)
	rateLimitedTotal.Store(0)
	rateLimitErrorsTotal.Store(0)
	broadcastsTotal.Store(0)
	panicsTotal.Store(0)
	errorsMu.Lock()
	errorsTotal = make(map[string]uint64)
	errorsMu.Unlock()
}
