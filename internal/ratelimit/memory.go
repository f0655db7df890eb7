package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps fixed-window counters in a process-local map. Counters
// are replaced when their window expires and removed by a periodic sweep.
//
// Each replica enforces its own quota: with N replicas behind a balancer the
// effective limit is N times the configured one. Use RedisStore when that
// matters.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	clock   func() time.Time
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		clock:   time.Now,
	}
}

// WithClock overrides the time source. Test helper.
func (m *MemoryStore) WithClock(clock func() time.Time) *MemoryStore {
	m.clock = clock
	return m
}

// Hit increments the counter for key, starting a new window when none exists
// or the previous one expired.
func (m *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &entry{resetAt: now.Add(window)}
		m.entries[key] = e
	}
	e.count++

	return e.count, e.resetAt, nil
}

// Sweep removes expired entries and returns how many were dropped.
func (m *MemoryStore) Sweep() int {
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.entries {
		if now.After(e.resetAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the current number of tracked keys.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// StartSweeper runs Sweep on the given interval until the returned stop
// function is called. Bounds memory on long-running processes.
func (m *MemoryStore) StartSweeper(interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
