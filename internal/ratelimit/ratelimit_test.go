package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestFixedWindow_EnforcesCeiling(t *testing.T) {
	limiter := NewFixedWindow(10, 15*time.Minute)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		result, err := limiter.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if result.Remaining != int64(10-i) {
			t.Errorf("request %d: expected remaining %d, got %d", i, 10-i, result.Remaining)
		}
	}

	result, _ := limiter.Allow(ctx, "1.2.3.4")
	if result.Allowed {
		t.Fatal("11th request in the window must be rejected")
	}
	if result.RetryAfter <= 0 {
		t.Error("rejected result must carry a positive RetryAfter")
	}
}

func TestFixedWindow_WindowExpiry(t *testing.T) {
	limiter := NewFixedWindow(10, 15*time.Minute)
	ctx := context.Background()

	current := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	for i := 0; i < 11; i++ {
		limiter.Allow(ctx, "1.2.3.4")
	}

	// Still inside the window: rejected.
	current = current.Add(14 * time.Minute)
	if result, _ := limiter.Allow(ctx, "1.2.3.4"); result.Allowed {
		t.Fatal("request inside the window must stay rejected")
	}

	// First request after expiry succeeds with a fresh budget.
	current = current.Add(2 * time.Minute)
	result, _ := limiter.Allow(ctx, "1.2.3.4")
	if !result.Allowed {
		t.Fatal("first request after window expiry must succeed")
	}
	if result.Remaining != 9 {
		t.Errorf("expected fresh window remaining 9, got %d", result.Remaining)
	}
}

func TestFixedWindow_KeysAreIndependent(t *testing.T) {
	limiter := NewFixedWindow(1, time.Minute)
	ctx := context.Background()

	if result, _ := limiter.Allow(ctx, "a"); !result.Allowed {
		t.Fatal("first request for key a must be allowed")
	}
	if result, _ := limiter.Allow(ctx, "a"); result.Allowed {
		t.Fatal("second request for key a must be rejected")
	}
	if result, _ := limiter.Allow(ctx, "b"); !result.Allowed {
		t.Fatal("key b must have its own budget")
	}
}

func TestFixedWindow_SweepDropsExpiredWindows(t *testing.T) {
	limiter := NewFixedWindow(1, time.Minute)
	ctx := context.Background()

	current := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	for i := 0; i < sweepThreshold+1; i++ {
		limiter.Allow(ctx, string(rune(i)))
	}

	current = current.Add(2 * time.Minute)
	// One more call past the threshold triggers the sweep.
	limiter.Allow(ctx, "fresh")

	limiter.mu.Lock()
	size := len(limiter.windows)
	limiter.mu.Unlock()

	if size > 2 {
		t.Errorf("expected expired windows swept, still holding %d", size)
	}
}
