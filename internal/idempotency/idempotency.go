package idempotency

import (
	"context"
	"time"

	redisadapter "github.com/horizone/hotel-bookings-and-payments/internal/adapters/redis"
)

// Idempotency deduplicates payment-processor webhook deliveries by event id.
type Idempotency struct {
	redis *redisadapter.Idempotency
	ttl   time.Duration
}

func NewIdempotency(redis *redisadapter.Idempotency, ttl time.Duration) *Idempotency {
	return &Idempotency{redis: redis, ttl: ttl}
}

// Seen reports whether this event id was already recorded within the TTL
// window.
func (i *Idempotency) Seen(ctx context.Context, eventID string) (bool, error) {
	return i.redis.Seen(ctx, eventID)
}

// MarkSeen records an event id. Callers mark only after the event's effects
// are durable, so an unrecorded id always means the event may still be
// retried.
func (i *Idempotency) MarkSeen(ctx context.Context, eventID string) error {
	return i.redis.MarkSeen(ctx, eventID, i.ttl)
}
