// Package cache is a versioned Redis cache for list and search responses.
//
// Each kind has its own version counter. Keys embed the version, so a
// mutation invalidates every cached page of its kind with one INCR and the
// stale entries simply expire.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "peopledesk"

// Cache wraps Redis based caching with per-kind versioning. A nil *Cache,
// or one without a client, calls straight through to the loader.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New instantiates the cache helper.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Enabled reports whether a Redis client is configured.
func (c *Cache) Enabled() bool { return c != nil && c.client != nil }

func versionKey(kind string) string { return keyPrefix + ":version:" + kind }

// Version returns the current version of kind, initialising when missing.
func (c *Cache) Version(ctx context.Context, kind string) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}
	key := versionKey(kind)
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, key).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, key, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key for kind with its current version.
func (c *Cache) BuildKey(ctx context.Context, kind string, parts ...string) (string, error) {
	joined := strings.Join(append([]string{keyPrefix, kind}, parts...), ":")
	if !c.Enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx, kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON loads a cached value into dest or populates it using loader.
// Reports whether the value came from the cache.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) (bool, error) {
	if loader == nil {
		return false, errors.New("cache: loader required")
	}
	if c.Enabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return true, json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return false, err
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return false, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	if c.Enabled() {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return false, err
		}
	}
	return false, json.Unmarshal(raw, dest)
}

// Bump invalidates every cached page of kind. Clients learn of the change
// through the summary poll, not through Redis.
func (c *Cache) Bump(ctx context.Context, kind string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Incr(ctx, versionKey(kind)).Err()
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
