package cache

import "time"

// TTLPolicy chooses the lifetime of a sun data entry.
//
// The current day gets the short TTL because upstream can still refine it;
// any other day is immutable once computed and gets the long TTL.
type TTLPolicy struct {
	// Short is the TTL for entries describing today. Default: 1 hour.
	Short time.Duration

	// Long is the TTL for entries describing any other day. Default: 7 days.
	Long time.Duration
}

// DefaultTTLPolicy returns the default TTL policy.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Short: time.Hour,
		Long:  7 * 24 * time.Hour,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() TTLPolicy {
	return TTLPolicy{}
}

// ShouldCache returns true if either bucket caches.
func (p TTLPolicy) ShouldCache() bool {
	return p.Short > 0 || p.Long > 0
}

// For returns the TTL for an entry describing date, given today's date.
// Both arguments are canonical YYYY-MM-DD strings.
func (p TTLPolicy) For(date, today string) time.Duration {
	if date == today {
		return p.Short
	}
	return p.Long
}
