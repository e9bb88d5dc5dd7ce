package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter implements a sliding window rate limiter using Redis.
// A nil client disables limiting.
type RedisRateLimiter struct {
	client *redis.Client
	rate   int
	window time.Duration
	prefix string
}

func NewRedisRateLimiter(client *redis.Client, rate int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		rate:   rate,
		window: window,
		prefix: "ratelimit:",
	}
}

// Allow checks if a request should be allowed for the given key.
// Returns true if allowed, false if rate limited.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	if rl.client == nil {
		return true
	}

	now := time.Now().UnixNano()
	windowStart := now - int64(rl.window)
	redisKey := fmt.Sprintf("%s%s", rl.prefix, key)

	pipe := rl.client.Pipeline()

	// Remove old entries outside the window
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart))

	// Add current request timestamp
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now), Member: now})

	// Count requests in window
	countCmd := pipe.ZCard(ctx, redisKey)

	// Set TTL for the key
	pipe.Expire(ctx, redisKey, rl.window)

	_, err := pipe.Exec(ctx)
	if err != nil {
		// Fail open - allow request if Redis fails
		return true
	}

	return countCmd.Val() <= int64(rl.rate)
}
