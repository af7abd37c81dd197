package cache

import (
	"context"
	"time"
)

// FetchFunc produces the value for a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// ReadThrough returns the cached value for key or calls fetch and stores
// its result. The bool reports whether the value came from the cache.
//
// Errors are NOT cached, and a failed write never fails the read. A nil
// cache or an invalid key degrades to calling fetch directly.
func ReadThrough(ctx context.Context, c Cache, key string, ttl time.Duration, fetch FetchFunc) ([]byte, bool, error) {
	if c == nil || ValidateKey(key) != nil {
		v, err := fetch(ctx)
		return v, false, err
	}

	if cached, ok := c.Get(ctx, key); ok {
		return cached, true, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, false, err
	}

	if ttl > 0 {
		_ = c.Set(ctx, key, v, ttl)
	}
	return v, false, nil
}
