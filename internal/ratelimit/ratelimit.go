// Package ratelimit provides the fixed-window request limiter applied to
// submission creation, keyed by client address.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter checks and updates the request count for a key.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// sweepThreshold is the counter-map size beyond which expired windows are
// swept eagerly.
const sweepThreshold = 4096

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindow is the in-process Limiter: at most limit requests per key per
// window. Counters live only in this process; the Redis-backed limiter in
// internal/cache is used when instances must share state.
type FixedWindow struct {
	mu      sync.Mutex
	limit   int
	size    time.Duration
	windows map[string]*window

	// now is swappable so tests can control window expiry.
	now func() time.Time
}

var _ Limiter = (*FixedWindow)(nil)

// NewFixedWindow creates a FixedWindow allowing limit requests per size.
func NewFixedWindow(limit int, size time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:   limit,
		size:    size,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow records a request for key and reports whether it is within the
// current window's budget. Never returns an error.
func (f *FixedWindow) Allow(_ context.Context, key string) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()

	w, ok := f.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(f.size)}
		f.windows[key] = w
	}

	w.count++

	if len(f.windows) > sweepThreshold {
		f.sweep(now)
	}

	remaining := int64(f.limit - w.count)
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   w.count <= f.limit,
		Remaining: remaining,
		ResetAt:   w.resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = w.resetAt.Sub(now)
	}
	return result, nil
}

// sweep drops expired windows. Caller holds the lock.
func (f *FixedWindow) sweep(now time.Time) {
	for key, w := range f.windows {
		if !now.Before(w.resetAt) {
			delete(f.windows, key)
		}
	}
}
