package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Idempotency tracks webhook event ids that have already been delivered.
type Idempotency struct {
	client *redis.Client
}

func NewIdempotency(client *redis.Client) *Idempotency {
	return &Idempotency{client: client}
}

// Seen reports whether an event id is recorded.
func (i *Idempotency) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := i.client.Exists(ctx, "evt:"+eventID).Result()
	return n > 0, err
}

// MarkSeen records an event id with a TTL. Check and mark are deliberately
// separate calls: ids are recorded only once the event's effects are durable,
// and two concurrent first deliveries at worst both reach the idempotent
// reconciler.
func (i *Idempotency) MarkSeen(ctx context.Context, eventID string, ttl time.Duration) error {
	return i.client.Set(ctx, "evt:"+eventID, 1, ttl).Err()
}
