package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meshhq/ghcrawler/processor"
)

// RedisEtagCache is a fast-path Store decorator: event discovery's etag
// lookups hit Redis first and only fall through to the wrapped Store on a
// miss.
type RedisEtagCache struct {
	client *redis.Client
	next   Store
	ttl    time.Duration
}

// NewRedisEtagCache connects to redisURL and wraps next.
func NewRedisEtagCache(ctx context.Context, redisURL string, next Store, ttl time.Duration) (*RedisEtagCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis etag cache: parse url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis etag cache: ping: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisEtagCache{client: client, next: next, ttl: ttl}, nil
}

func (c *RedisEtagCache) key(url string) string { return "ghcrawler:etag:" + url }

// Etag checks Redis first, falling through to the wrapped Store on a miss
// and populating the cache with what it finds.
func (c *RedisEtagCache) Etag(ctx context.Context, typ processor.ElementType, url string) (string, bool, error) {
	etag, err := c.client.Get(ctx, c.key(url)).Result()
	if err == nil {
		return etag, true, nil
	}
	if err != redis.Nil {
		return "", false, fmt.Errorf("redis etag cache: get: %w", err)
	}

	etag, ok, err := c.next.Etag(ctx, typ, url)
	if err != nil || !ok {
		return etag, ok, err
	}
	if err := c.client.Set(ctx, c.key(url), etag, c.ttl).Err(); err != nil {
		return etag, ok, fmt.Errorf("redis etag cache: set: %w", err)
	}
	return etag, ok, nil
}

// Get passes straight through; only the etag lookup benefits from the
// cache.
func (c *RedisEtagCache) Get(ctx context.Context, urn processor.URN) ([]byte, bool, error) {
	return c.next.Get(ctx, urn)
}

func (c *RedisEtagCache) Put(ctx context.Context, doc Document) error {
	if err := c.next.Put(ctx, doc); err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(doc.URL), doc.Etag, c.ttl).Err()
}

// Close releases the Redis client.
func (c *RedisEtagCache) Close() error { return c.client.Close() }
