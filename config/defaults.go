package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/ashishkumar256/sunspot/auth"
	"github.com/ashishkumar256/sunspot/cache"
	"github.com/ashishkumar256/sunspot/geocode"
	"github.com/ashishkumar256/sunspot/sunapi"
)

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.diagnostics", false)

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.header", auth.DefaultHeader)
	v.SetDefault("auth.hash", auth.HashSHA256)
	v.SetDefault("auth.prefix", auth.DefaultPrefix)
	v.SetDefault("auth.keys", []map[string]any{})
	v.SetDefault("auth.keys_file", "")

	ttl := cache.DefaultTTLPolicy()
	v.SetDefault("cache.backend", cache.BackendRedis)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.prefix", cache.DefaultPrefix)
	v.SetDefault("cache.short_ttl", ttl.Short)
	v.SetDefault("cache.long_ttl", ttl.Long)
	v.SetDefault("cache.connect_attempts", 5)
	v.SetDefault("cache.connect_backoff", 2*time.Second)
	v.SetDefault("cache.tracing", true)

	v.SetDefault("geocode.search_url", geocode.DefaultSearchURL)
	v.SetDefault("geocode.reverse_url", geocode.DefaultReverseURL)
	v.SetDefault("geocode.user_agent", geocode.DefaultUserAgent)
	v.SetDefault("geocode.timeout", 10*time.Second)
	v.SetDefault("geocode.cache_backend", GeocodeCacheStore)
	v.SetDefault("geocode.cache_ttl", geocode.DefaultCacheTTL)
	v.SetDefault("geocode.memcache_servers", []string{})

	v.SetDefault("sunapi.provider", SunAPIRemote)
	v.SetDefault("sunapi.url", sunapi.DefaultURL)
	v.SetDefault("sunapi.formatted", true)
	v.SetDefault("sunapi.timeout", 10*time.Second)

	v.SetDefault("dates.timezone", "UTC")

	v.SetDefault("observe.service_name", "sunspot")
	v.SetDefault("observe.tracing.enabled", false)
	v.SetDefault("observe.tracing.exporter", "otlp")
	v.SetDefault("observe.tracing.sample_pct", 1.0)
	v.SetDefault("observe.metrics.enabled", true)
	v.SetDefault("observe.metrics.exporter", "prometheus")
	v.SetDefault("observe.logging.enabled", true)
	v.SetDefault("observe.logging.level", "info")

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("sentry.traces_sample_rate", 0.0)
}

// envAliases binds conventional variable names alongside SUNSPOT_*.
var envAliases = map[string][]string{
	"observe.service_name": {"OTEL_SERVICE_NAME"},
	"sentry.dsn":           {"SENTRY_DSN"},
	"sentry.environment":   {"SENTRY_ENVIRONMENT"},
}
