package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LocalCache is a process-local Cache over go-cache. It runs a janitor
// goroutine that evicts expired entries every cleanup interval.
type LocalCache struct {
	c *gocache.Cache
}

// NewLocalCache creates a local cache. A cleanup interval <= 0 disables the
// janitor; expired entries are then only dropped on access.
func NewLocalCache(cleanup time.Duration) *LocalCache {
	return &LocalCache{c: gocache.New(gocache.NoExpiration, cleanup)}
}

// Get retrieves a value.
func (l *LocalCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := l.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Set stores a value. TTL=0 means no caching.
func (l *LocalCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.c.Set(key, value, ttl)
	return nil
}

// Delete removes a value.
func (l *LocalCache) Delete(_ context.Context, key string) error {
	l.c.Delete(key)
	return nil
}

// Len returns the number of items, including expired ones not yet evicted.
func (l *LocalCache) Len() int {
	return l.c.ItemCount()
}

// Ensure LocalCache implements Cache
var _ Cache = (*LocalCache)(nil)
