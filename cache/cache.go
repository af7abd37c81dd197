package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilCache    = errors.New("cache: cache is nil")
	ErrInvalidKey  = errors.New("cache: key is invalid")
	ErrKeyTooLong  = errors.New("cache: key exceeds max length")
	ErrUnavailable = errors.New("cache: store unavailable")
)

// Cache is the minimal key-value interface with per-entry expiry.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get should never error; it returns (nil, false) on miss.
type Cache interface {
	// Get retrieves a cached value. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL. TTL=0 means no caching.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cached value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// Store is a Cache that can also enumerate keys and report reachability.
//
// Contract:
//   - Keys never errors; transport failures yield an empty result.
//   - Keys returns matches in the backend's natural enumeration order.
//     Callers must not rely on recency or length ordering.
//   - Pattern syntax is glob-style: '*' matches any run of characters,
//     '?' matches one character, and '\' escapes the next character.
type Store interface {
	Cache

	// Keys returns all keys matching pattern.
	Keys(ctx context.Context, pattern string) []string

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// TTLReporter is implemented by stores that can report the remaining
// lifetime of an entry.
type TTLReporter interface {
	TTL(ctx context.Context, key string) (time.Duration, bool)
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
