package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cccbbbaaaa/culture-china/internal/config"
	"github.com/cccbbbaaaa/culture-china/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Key prefixes of the cached public listings. Mutations invalidate by prefix.
const (
	PrefixAlumni    = "alumni:"
	PrefixResources = "resources:"
	PrefixMedia     = "media:"
)

// Cache stores JSON encoded listings in Redis. A nil *Cache or a disabled one
// always calls through to the loader. Redis failures are logged and never
// returned to the caller.
type Cache struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	enabled bool
	group   singleflight.Group
	log     zerolog.Logger
}

func New(client *redis.Client, cfg config.CacheConfig) *Cache {
	return &Cache{
		client:  client,
		prefix:  cfg.Prefix,
		ttl:     cfg.TTL,
		enabled: cfg.Enabled && client != nil,
		log:     logger.Get().With().Str("component", "cache").Logger(),
	}
}

func (c *Cache) active() bool {
	return c != nil && c.enabled
}

// Fetch returns the cached value under key or loads, stores and returns it.
// Concurrent misses for the same key share one load.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if !c.active() {
		return load(ctx)
	}

	full := c.prefix + key
	var out T
	raw, err := c.client.Get(ctx, full).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, &out); jsonErr == nil {
			return out, nil
		}
		c.log.Warn().Str("key", full).Msg("Dropping undecodable cache entry")
	case err != redis.Nil:
		c.log.Warn().Err(err).Str("key", full).Msg("Cache read failed")
	}

	v, err, _ := c.group.Do(full, func() (interface{}, error) {
		value, err := load(ctx)
		if err != nil {
			return value, err
		}
		if data, err := json.Marshal(value); err == nil {
			if err := c.client.Set(ctx, full, data, c.ttl).Err(); err != nil {
				c.log.Warn().Err(err).Str("key", full).Msg("Cache write failed")
			}
		}
		return value, nil
	})
	if err != nil {
		return out, err
	}
	return v.(T), nil
}

// Invalidate deletes every key under the given prefixes.
func (c *Cache) Invalidate(ctx context.Context, prefixes ...string) {
	if !c.active() {
		return
	}
	for _, p := range prefixes {
		pattern := c.prefix + p + "*"
		iter := c.client.Scan(ctx, 0, pattern, 200).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			c.log.Warn().Err(err).Str("pattern", pattern).Msg("Cache scan failed")
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.log.Warn().Err(err).Str("pattern", pattern).Msg("Cache invalidation failed")
			continue
		}
		c.log.Debug().Str("pattern", pattern).Int("keys", len(keys)).Msg("Cache invalidated")
	}
}
