package cache

import (
	"context"
	"fmt"
	"time"
)

// Unavailable is the Store used when the cache tier cannot be reached.
// Every read misses, every write is silently dropped, and Ping reports
// ErrUnavailable so health checks can surface the degraded mode.
type Unavailable struct {
	// Reason records why the tier is unavailable, for diagnostics.
	Reason error
}

// Get always misses.
func (Unavailable) Get(context.Context, string) ([]byte, bool) { return nil, false }

// Set drops the value.
func (Unavailable) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete is a no-op.
func (Unavailable) Delete(context.Context, string) error { return nil }

// Keys never matches.
func (Unavailable) Keys(context.Context, string) []string { return nil }

// Ping returns ErrUnavailable, annotated with Reason when set.
func (u Unavailable) Ping(context.Context) error {
	if u.Reason != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, u.Reason)
	}
	return ErrUnavailable
}

// Close is a no-op.
func (Unavailable) Close() error { return nil }

// IsUnavailable reports whether s is the unavailable state object.
func IsUnavailable(s Store) bool {
	switch s.(type) {
	case Unavailable, *Unavailable:
		return true
	}
	return s == nil
}

var _ Store = Unavailable{}
