// Package config loads sunspot settings from an optional YAML file,
// SUNSPOT_* environment variables and command-line flags, in increasing
// order of precedence. Secret-bearing fields go through the secret package
// after decoding.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ashishkumar256/sunspot/auth"
	"github.com/ashishkumar256/sunspot/cache"
	"github.com/ashishkumar256/sunspot/observe"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Geocode GeocodeConfig `mapstructure:"geocode"`
	SunAPI  SunAPIConfig  `mapstructure:"sunapi"`
	Dates   DatesConfig   `mapstructure:"dates"`
	Observe ObserveConfig `mapstructure:"observe"`
	Sentry  SentryConfig  `mapstructure:"sentry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Diagnostics mounts the crash, factorial and exhaust endpoints.
	Diagnostics bool `mapstructure:"diagnostics"`
}

// AuthConfig configures the API key gate.
type AuthConfig struct {
	Enabled  bool            `mapstructure:"enabled"`
	Header   string          `mapstructure:"header"`
	Hash     string          `mapstructure:"hash"`
	Prefix   string          `mapstructure:"prefix"`
	Keys     []auth.KeyEntry `mapstructure:"keys"`
	KeysFile string          `mapstructure:"keys_file"`
}

// CacheConfig configures the sun data cache.
type CacheConfig struct {
	Backend         string        `mapstructure:"backend"`
	Addr            string        `mapstructure:"addr"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	Prefix          string        `mapstructure:"prefix"`
	ShortTTL        time.Duration `mapstructure:"short_ttl"`
	LongTTL         time.Duration `mapstructure:"long_ttl"`
	ConnectAttempts int           `mapstructure:"connect_attempts"`
	ConnectBackoff  time.Duration `mapstructure:"connect_backoff"`
	Tracing         bool          `mapstructure:"tracing"`
}

// GeocodeConfig configures the geocoding provider and its coordinate cache.
type GeocodeConfig struct {
	SearchURL       string        `mapstructure:"search_url"`
	ReverseURL      string        `mapstructure:"reverse_url"`
	UserAgent       string        `mapstructure:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"`
	CacheBackend    string        `mapstructure:"cache_backend"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	MemcacheServers []string      `mapstructure:"memcache_servers"`
}

// SunAPIConfig configures the sun-times provider.
type SunAPIConfig struct {
	Provider  string        `mapstructure:"provider"`
	URL       string        `mapstructure:"url"`
	Formatted bool          `mapstructure:"formatted"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DatesConfig configures date resolution.
type DatesConfig struct {
	// Timezone names the IANA zone that defines "today".
	Timezone string `mapstructure:"timezone"`
}

// ObserveConfig configures telemetry.
type ObserveConfig struct {
	ServiceName string `mapstructure:"service_name"`
	Tracing     struct {
		Enabled   bool    `mapstructure:"enabled"`
		Exporter  string  `mapstructure:"exporter"`
		SamplePct float64 `mapstructure:"sample_pct"`
	} `mapstructure:"tracing"`
	Metrics struct {
		Enabled  bool   `mapstructure:"enabled"`
		Exporter string `mapstructure:"exporter"`
	} `mapstructure:"metrics"`
	Logging struct {
		Enabled bool   `mapstructure:"enabled"`
		Level   string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

// SentryConfig configures panic reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

// Geocode cache backends.
const (
	GeocodeCacheStore    = "store"
	GeocodeCacheMemory   = "memory"
	GeocodeCacheMemcache = "memcache"
	GeocodeCacheNone     = "none"
)

// Sun-times providers.
const (
	SunAPIRemote = "remote"
	SunAPIAstral = "astral"
)

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Server.Addr != "", "server.addr is required")
	check(slices.Contains([]string{cache.BackendRedis, cache.BackendMemory, cache.BackendNone}, c.Cache.Backend),
		"cache.backend %q must be redis, memory or none", c.Cache.Backend)
	check(c.Cache.ShortTTL >= 0 && c.Cache.LongTTL >= 0, "cache TTLs must not be negative")
	check(slices.Contains([]string{GeocodeCacheStore, GeocodeCacheMemory, GeocodeCacheMemcache, GeocodeCacheNone}, c.Geocode.CacheBackend),
		"geocode.cache_backend %q must be store, memory, memcache or none", c.Geocode.CacheBackend)
	check(c.Geocode.CacheBackend != GeocodeCacheMemcache || len(c.Geocode.MemcacheServers) > 0,
		"geocode.memcache_servers is required for the memcache backend")
	check(slices.Contains([]string{SunAPIRemote, SunAPIAstral}, c.SunAPI.Provider),
		"sunapi.provider %q must be remote or astral", c.SunAPI.Provider)
	check(slices.Contains([]string{auth.HashSHA256, auth.HashPlain}, c.Auth.Hash),
		"auth.hash %q must be sha256 or plain", c.Auth.Hash)
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	obs := c.ObserveConfig()
	if err := obs.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: observe: %w", ErrInvalid, err))
	}

	return errors.Join(errs...)
}

// Location returns the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Dates.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: dates.timezone: %w", ErrInvalid, err)
	}
	return loc, nil
}

// ObserveConfig converts to the observe package configuration.
func (c *Config) ObserveConfig() observe.Config {
	o := c.Observe
	return observe.Config{
		ServiceName: o.ServiceName,
		Version:     Version,
		Tracing: observe.TracingConfig{
			Enabled:   o.Tracing.Enabled,
			Exporter:  o.Tracing.Exporter,
			SamplePct: o.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.Metrics.Enabled,
			Exporter: o.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: o.Logging.Enabled,
			Level:   o.Logging.Level,
		},
	}
}

// ConnectConfig converts to the cache connect configuration.
func (c *Config) ConnectConfig() cache.ConnectConfig {
	return cache.ConnectConfig{
		Backend: c.Cache.Backend,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.Addr,
			Password: c.Cache.Password,
			DB:       c.Cache.DB,
			Tracing:  c.Cache.Tracing,
		},
		Attempts: c.Cache.ConnectAttempts,
		Backoff:  c.Cache.ConnectBackoff,
	}
}

// TTLPolicy returns the sun data TTL policy.
func (c *Config) TTLPolicy() cache.TTLPolicy {
	return cache.TTLPolicy{Short: c.Cache.ShortTTL, Long: c.Cache.LongTTL}
}

// Version is the build version, set with -ldflags.
var Version = "dev"
