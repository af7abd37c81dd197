package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/ashishkumar256/sunspot/observe"
)

// memcacheMaxKey is the protocol limit on key length.
const memcacheMaxKey = 250

// MemcacheCache is a Cache backed by memcached. It has no key enumeration,
// so it only serves exact-key caches such as geocoded coordinates.
type MemcacheCache struct {
	client *memcache.Client
	logger observe.Logger
}

// NewMemcacheCache creates a cache over the given memcached servers.
func NewMemcacheCache(logger observe.Logger, servers ...string) *MemcacheCache {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &MemcacheCache{
		client: memcache.New(servers...),
		logger: logger,
	}
}

// Get retrieves a value. Misses are silent; other errors are logged.
func (c *MemcacheCache) Get(ctx context.Context, key string) ([]byte, bool) {
	item, err := c.client.Get(memcacheKey(key))
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			c.logger.Warn(ctx, "memcache get failed",
				observe.Field{Key: "cache.key", Value: key},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
		return nil, false
	}
	return item.Value, true
}

// Set stores a value. TTL is rounded down to whole seconds; sub-second TTLs
// are not cached.
func (c *MemcacheCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	secs := int32(ttl / time.Second)
	if secs <= 0 {
		return nil
	}
	mk := memcacheKey(key)
	if len(mk) > memcacheMaxKey {
		return ErrKeyTooLong
	}
	if err := c.client.Set(&memcache.Item{Key: mk, Value: value, Expiration: secs}); err != nil {
		return fmt.Errorf("cache: memcache set %q: %w", key, err)
	}
	return nil
}

// Delete removes a value. Idempotent.
func (c *MemcacheCache) Delete(_ context.Context, key string) error {
	err := c.client.Delete(memcacheKey(key))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return fmt.Errorf("cache: memcache delete %q: %w", key, err)
	}
	return nil
}

// Ping checks that every server answers.
func (c *MemcacheCache) Ping(context.Context) error {
	return c.client.Ping()
}

// memcacheKey escapes whitespace and control characters, which memcached
// rejects in keys.
func memcacheKey(key string) string {
	return url.QueryEscape(key)
}

// Ensure MemcacheCache implements Cache
var _ Cache = (*MemcacheCache)(nil)
