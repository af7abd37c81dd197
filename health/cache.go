package health

import (
	"context"
	"errors"

	"github.com/ashishkumar256/sunspot/cache"
)

// CacheChecker reports on the sun data cache. It is healthy when the store
// answers a ping and degraded otherwise, including when caching is disabled.
type CacheChecker struct {
	store cache.Store
}

// NewCacheChecker creates a checker for store.
func NewCacheChecker(store cache.Store) *CacheChecker {
	return &CacheChecker{store: store}
}

// Name returns "cache".
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check pings the store.
func (c *CacheChecker) Check(ctx context.Context) Result {
	if cache.IsUnavailable(c.store) {
		err := cache.ErrUnavailable
		if c.store != nil {
			err = c.store.Ping(ctx)
		}
		if errors.Is(err, cache.ErrDisabled) {
			return Degraded("cache disabled, serving pass-through", err)
		}
		return Degraded("cache unavailable, serving pass-through", err)
	}

	if err := c.store.Ping(ctx); err != nil {
		return Degraded("cache ping failed, serving pass-through", err)
	}
	return Healthy("cache reachable")
}
