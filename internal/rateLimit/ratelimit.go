package rateLimit

import (
	"context"
	"time"

	redisadapter "github.com/horizone/hotel-bookings-and-payments/internal/adapters/redis"
)

// RateLimiter is a fixed-window counter over redis INCR/EXPIRE. The HTTP
// middleware scopes keys per authenticated user and per client ip so one
// guest hammering booking creation cannot starve the rest.
type RateLimiter struct {
	redis *redisadapter.Cache
}

func NewRateLimiter(redis *redisadapter.Cache) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow counts a request against the window and reports whether it is within
// rate. An unreachable counter rejects the request.
func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	fullKey := "hbp:rl:" + key

	pipe := rl.redis.Client().Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, period)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return false
	}

	return incr.Val() <= int64(rate)
}
