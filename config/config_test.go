package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashishkumar256/sunspot/secret"
)

// isolate runs the test from an empty directory so no sunspot.yaml is found.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sunspot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.False(t, cfg.Server.Diagnostics)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "X-API-KEY", cfg.Auth.Header)
	assert.Equal(t, "/api/", cfg.Auth.Prefix)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.ShortTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.LongTTL)
	assert.Equal(t, 5, cfg.Cache.ConnectAttempts)
	assert.Equal(t, 2*time.Second, cfg.Cache.ConnectBackoff)
	assert.Equal(t, "store", cfg.Geocode.CacheBackend)
	assert.Equal(t, "SunspotMinimal/1.0", cfg.Geocode.UserAgent)
	assert.Equal(t, "remote", cfg.SunAPI.Provider)
	assert.Equal(t, "UTC", cfg.Dates.Timezone)
	assert.Equal(t, "sunspot", cfg.Observe.ServiceName)
	assert.Equal(t, "prometheus", cfg.Observe.Metrics.Exporter)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	isolate(t)
	path := writeFile(t, `
server:
  addr: ":9000"
  diagnostics: true
cache:
  backend: memory
  short_ttl: 30m
auth:
  keys:
    - user: alice
      key: alice-key
geocode:
  cache_backend: memcache
  memcache_servers: ["mc1:11211", "mc2:11211"]
dates:
  timezone: Europe/Paris
`)
	t.Setenv("SUNSPOT_CACHE_LONG_TTL", "48h")
	t.Setenv("SUNSPOT_SUNAPI_PROVIDER", "astral")
	t.Setenv("OTEL_SERVICE_NAME", "sunspot-edge")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.addr", "", "")
	require.NoError(t, flags.Parse([]string{"--server.addr=:9100"}))

	cfg, err := Load(context.Background(), Options{Path: path, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Addr, "flag beats file")
	assert.True(t, cfg.Server.Diagnostics)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.ShortTTL)
	assert.Equal(t, 48*time.Hour, cfg.Cache.LongTTL, "env beats default")
	assert.Equal(t, "astral", cfg.SunAPI.Provider)
	assert.Equal(t, "sunspot-edge", cfg.Observe.ServiceName)
	assert.Equal(t, []string{"mc1:11211", "mc2:11211"}, cfg.Geocode.MemcacheServers)
	require.Len(t, cfg.Auth.Keys, 1)
	assert.Equal(t, "alice", cfg.Auth.Keys[0].User)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestLoad_ResolvesSecrets(t *testing.T) {
	isolate(t)
	path := writeFile(t, `
cache:
  addr: "${SUNSPOT_TEST_REDIS_HOST}:6379"
  password: secretref:env:SUNSPOT_TEST_REDIS_PASSWORD
auth:
  keys:
    - user: bob
      key: secretref:env:SUNSPOT_TEST_BOB_KEY
`)
	t.Setenv("SUNSPOT_TEST_REDIS_HOST", "redis.internal")
	t.Setenv("SUNSPOT_TEST_REDIS_PASSWORD", "hunter2")
	t.Setenv("SUNSPOT_TEST_BOB_KEY", "bob-key")

	cfg, err := Load(context.Background(), Options{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6379", cfg.Cache.Addr)
	assert.Equal(t, "hunter2", cfg.Cache.Password)
	assert.Equal(t, "bob-key", cfg.Auth.Keys[0].Key)
}

func TestLoad_MissingSecret(t *testing.T) {
	isolate(t)
	path := writeFile(t, "cache:\n  password: secretref:env:SUNSPOT_TEST_UNSET_SECRET\n")

	_, err := Load(context.Background(), Options{Path: path})
	require.Error(t, err)
	assert.True(t, errors.Is(err, secret.ErrNotFound), "error = %v", err)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolate(t)
	_, err := Load(context.Background(), Options{Path: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"cache backend", func(c *Config) { c.Cache.Backend = "etcd" }},
		{"negative ttl", func(c *Config) { c.Cache.ShortTTL = -time.Second }},
		{"geocode cache", func(c *Config) { c.Geocode.CacheBackend = "disk" }},
		{"memcache without servers", func(c *Config) { c.Geocode.CacheBackend = GeocodeCacheMemcache }},
		{"sun provider", func(c *Config) { c.SunAPI.Provider = "nasa" }},
		{"hash", func(c *Config) { c.Auth.Hash = "md5" }},
		{"timezone", func(c *Config) { c.Dates.Timezone = "Mars/Olympus" }},
		{"log level", func(c *Config) { c.Observe.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(context.Background(), Options{})
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestConversions(t *testing.T) {
	isolate(t)
	cfg, err := Load(context.Background(), Options{})
	require.NoError(t, err)

	cc := cfg.ConnectConfig()
	assert.Equal(t, "redis", cc.Backend)
	assert.Equal(t, "localhost:6379", cc.Redis.Addr)
	assert.Equal(t, 5, cc.Attempts)

	p := cfg.TTLPolicy()
	assert.Equal(t, time.Hour, p.Short)

	oc := cfg.ObserveConfig()
	assert.Equal(t, "sunspot", oc.ServiceName)
	assert.NoError(t, oc.Validate())
}
