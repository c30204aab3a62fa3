// Package cache stores JSON-encoded values in Redis with a TTL. Entries are
// namespaced so a whole group can be dropped when its source data changes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyFormat = "futsal:%s:v1:%s"

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Cache struct {
	rdb       *redis.Client
	namespace string
	ttl       time.Duration
}

func New(rdb *redis.Client, namespace string, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, namespace: namespace, ttl: ttl}
}

// Open parses a redis:// URL and verifies the server answers PING.
func Open(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

func (c *Cache) key(name string) string {
	return fmt.Sprintf(keyFormat, c.namespace, name)
}

// Get decodes the cached value for name into dest.
func (c *Cache) Get(ctx context.Context, name string, dest any) error {
	data, err := c.rdb.Get(ctx, c.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := c.rdb.Set(ctx, c.key(name), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Invalidate removes every entry in the namespace.
func (c *Cache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, fmt.Sprintf(keyFormat, c.namespace, "*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning %s keys: %w", c.namespace, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting %s keys: %w", c.namespace, err)
	}
	return nil
}

// Remember returns the cached value for name, or calls load, caches its
// result and returns it. Cache failures fall through to load.
func Remember[T any](ctx context.Context, c *Cache, name string, load func(context.Context) (T, error)) (T, error) {
	var v T
	if err := c.Get(ctx, name, &v); err == nil {
		return v, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	_ = c.Set(ctx, name, v)
	return v, nil
}

// Ping adapts the client to a health check.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
