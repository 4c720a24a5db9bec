// Package verdictcache caches probe verdicts for repeat senders in Redis.
// A relay that has already accepted or rejected a sender will usually do the
// same again within a short window, so repeat messages can skip the helper
// spawn entirely.
package verdictcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// keyPrefix namespaces verdict entries in a shared Redis instance.
const keyPrefix = "relayprobe:verdict:"

// Cache is a Redis-backed verdict store with a fixed TTL per entry.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Cache talking to the Redis instance at address.
func New(address, password string, db int, ttl time.Duration) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// Key derives the cache key for a sender. ip may be empty when the original
// connection's metadata was unresolvable.
func Key(ip, envelopeFrom string) string {
	return keyPrefix + ip + ":" + envelopeFrom
}

// Get returns the cached verdict for key. The second return value reports
// whether an entry existed.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return val, true, nil
}

// Put stores a verdict for key with the cache's TTL.
func (c *Cache) Put(ctx context.Context, key, verdict string) error {
	if err := c.client.Set(ctx, key, verdict, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
