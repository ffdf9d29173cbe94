// Package cache keeps search results in Redis.
//
// Entries are namespaced by a generation counter. Invalidate bumps the
// counter, so every older entry becomes unreachable at once and ages out
// through its TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const DefaultTTL = 5 * time.Minute

type SearchCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type Option func(*SearchCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *SearchCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithPrefix namespaces keys, mainly so tests can share a Redis database.
func WithPrefix(prefix string) Option {
	return func(c *SearchCache) {
		c.prefix = prefix
	}
}

func NewSearchCache(client *redis.Client, opts ...Option) *SearchCache {
	c := &SearchCache{client: client, prefix: "sns:search", ttl: DefaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient parses a redis:// URL, or treats a bare host:port as the address.
func NewClient(url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis url is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	return redis.NewClient(opts), nil
}

func (c *SearchCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, false, err
	}
	val, err := c.client.Get(ctx, c.entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return val, true, nil
}

func (c *SearchCache) Set(ctx context.Context, key string, value []byte) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.entryKey(gen, key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *SearchCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *SearchCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

func (c *SearchCache) generationKey() string {
	return c.prefix + ":gen"
}

func (c *SearchCache) entryKey(gen int64, key string) string {
	return c.prefix + ":" + strconv.FormatInt(gen, 10) + ":" + key
}
