package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okhomenko/plantkeeper/pkg/database"
	"github.com/redis/go-redis/v9"
)

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis *database.Redis
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow checks if a request is allowed based on rate limit using a sliding
// window log. When the limit is exhausted it also reports how long until the
// oldest entry leaves the window; the error return is reserved for Redis
// trouble.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	redisKey := fmt.Sprintf("ratelimit:%s", key)

	// Remove entries older than the window
	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.Unix())).Err()
	if err != nil {
		return false, 0, fmt.Errorf("failed to clean old entries: %w", err)
	}

	// Count current entries in the window
	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	if count >= int64(limit) {
		retryAfter := window
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			oldestTime := time.Unix(int64(oldest[0].Score), 0)
			if wait := window - now.Sub(oldestTime); wait > 0 && wait < retryAfter {
				retryAfter = wait
			}
		}
		return false, retryAfter, nil
	}

	// Add current request to the set with current timestamp as score
	member := fmt.Sprintf("%d-%d", now.UnixNano(), now.Unix())
	err = r.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.Unix()),
		Member: member,
	}).Err()
	if err != nil {
		return false, 0, fmt.Errorf("failed to add entry: %w", err)
	}

	// Expiration keeps abandoned keys from lingering; failure here is harmless.
	_ = r.redis.Client.Expire(ctx, redisKey, window+time.Minute).Err()

	return true, 0, nil
}

// GetRemainingRequests returns the number of remaining requests allowed
func (r *RateLimiter) GetRemainingRequests(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	redisKey := fmt.Sprintf("ratelimit:%s", key)

	// Remove entries older than the window
	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.Unix())).Err()
	if err != nil {
		return 0, fmt.Errorf("failed to clean old entries: %w", err)
	}

	// Count current entries in the window
	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}
