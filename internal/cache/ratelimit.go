package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/faceforge/faceforge/internal/auth"
	"github.com/faceforge/faceforge/internal/ratelimit"
)

// submitLimitPrefix is the Redis key prefix for submission rate limits.
const submitLimitPrefix = "ratelimit:submit:"

// fixedWindowScript implements the fixed-window counter atomically: the
// first hit in a window sets the expiry, later hits only increment.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])  -- seconds

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('EXPIRE', key, window)
	end

	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end

	local allowed = 0
	if count <= limit then
		allowed = 1
	end

	return {allowed, count, ttl}
`)

// Limiter is the Redis-backed fixed-window limiter, used when multiple
// instances must share rate-limit state.
type Limiter struct {
	cache  *Cache
	limit  int
	window time.Duration
}

var _ ratelimit.Limiter = (*Limiter)(nil)

// NewLimiter creates a Limiter allowing limit requests per window.
func NewLimiter(cache *Cache, limit int, window time.Duration) *Limiter {
	return &Limiter{cache: cache, limit: limit, window: window}
}

// Allow checks and updates the request count for a key. The key is hashed
// before use so raw client addresses never appear in Redis.
func (l *Limiter) Allow(ctx context.Context, key string) (*ratelimit.Result, error) {
	redisKey := submitLimitPrefix + auth.KeyDigest(key)

	values, err := fixedWindowScript.Run(ctx, l.cache.client,
		[]string{redisKey},
		l.limit,
		int(l.window.Seconds()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("rate limit script returned %d values", len(values))
	}

	allowed, count, ttl := values[0] == 1, values[1], time.Duration(values[2])*time.Second

	remaining := int64(l.limit) - count
	if remaining < 0 {
		remaining = 0
	}

	result := &ratelimit.Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}
	if !allowed {
		result.RetryAfter = ttl
	}
	return result, nil
}
