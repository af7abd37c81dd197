package geocode

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ashishkumar256/sunspot/cache"
	"github.com/ashishkumar256/sunspot/observe"
)

// Coordinate cache defaults.
const (
	DefaultCachePrefix = "geocode"
	DefaultCacheTTL    = 30 * 24 * time.Hour
)

// CachingConfig configures the coordinate cache.
type CachingConfig struct {
	// Prefix namespaces cache keys: {prefix}:{city}. It must differ from the
	// sun data key prefix so shortcut scans never see coordinate entries.
	// Default: "geocode"
	Prefix string

	// TTL is the lifetime of a cached forward lookup. Default: 30 days
	TTL time.Duration

	// Logger receives cache decode failures. Default: no-op
	Logger observe.Logger
}

// Caching decorates a Geocoder with a cache of forward lookups. Not-found
// results are not cached. Reverse lookups pass straight through.
// Concurrent misses for the same city share one upstream call.
type Caching struct {
	group  singleflight.Group
	next   Geocoder
	cache  cache.Cache
	prefix string
	ttl    time.Duration
	logger observe.Logger
}

// NewCaching wraps next. A nil cache disables caching.
func NewCaching(next Geocoder, c cache.Cache, cfg CachingConfig) *Caching {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultCachePrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	return &Caching{
		next:   next,
		cache:  c,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		logger: cfg.Logger.WithOperation(observe.Operation{Component: "geocode", Name: "coordinate_cache"}),
	}
}

// Key returns the cache key for city.
func (c *Caching) Key(city string) string {
	return c.prefix + ":" + strings.ToLower(strings.TrimSpace(city))
}

// CityToCoordinates returns cached coordinates for city, or resolves and
// caches them.
func (c *Caching) CityToCoordinates(ctx context.Context, city string) (Coordinates, bool) {
	key := c.Key(city)

	raw, cached, err := cache.ReadThrough(ctx, c.cache, key, c.ttl, func(ctx context.Context) ([]byte, error) {
		v, err, _ := c.group.Do(key, func() (any, error) {
			coords, ok := c.next.CityToCoordinates(ctx, city)
			if !ok {
				return nil, ErrNotFound
			}
			return json.Marshal(coords)
		})
		if err != nil {
			return nil, err
		}
		return v.([]byte), nil
	})
	if err != nil {
		return Coordinates{}, false
	}

	var coords Coordinates
	if err := json.Unmarshal(raw, &coords); err != nil || coords.Latitude == "" || coords.Longitude == "" {
		c.logger.Warn(ctx, "discarding corrupt coordinate cache entry",
			observe.Field{Key: "cache.key", Value: key},
		)
		if c.cache != nil {
			_ = c.cache.Delete(ctx, key)
		}
		return c.next.CityToCoordinates(ctx, city)
	}

	if cached {
		c.logger.Debug(ctx, "coordinate cache hit", observe.Field{Key: "city", Value: city})
	}
	return coords, true
}

// CoordinatesToCity delegates to the wrapped Geocoder.
func (c *Caching) CoordinatesToCity(ctx context.Context, lat, lon string) string {
	return c.next.CoordinatesToCity(ctx, lat, lon)
}

var _ Geocoder = (*Caching)(nil)
