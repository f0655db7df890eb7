package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps fixed-window counters in redis so multiple replicas share
// one quota. INCR is atomic; the key TTL is the window boundary, so no sweep
// is needed.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

// Hit atomically increments the counter for key and stamps the window TTL on
// first observation.
func (r *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	k := r.prefix + key
	now := time.Now()

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}

	count := int(incr.Val())

	remaining := ttl.Val()
	if remaining < 0 {
		// First request of the window, or a counter left without expiry.
		if err := r.client.PExpire(ctx, k, window).Err(); err != nil {
			return count, now.Add(window), err
		}
		remaining = window
	}

	return count, now.Add(remaining), nil
}
