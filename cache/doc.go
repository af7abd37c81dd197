// Package cache provides the time-bucketed cache tier for sun data lookups.
//
// It defines a small Cache interface (get/set/delete) and a Store that adds
// wildcard key enumeration and reachability. Backends: an in-process
// MemoryStore, a Redis-backed RedisStore, and Cache-only adapters over
// memcache and go-cache for the geocoder's coordinate cache. Unavailable is
// the state object used when the tier cannot be reached; every operation on
// it is a miss or no-op, so callers degrade to pass-through.
package cache
