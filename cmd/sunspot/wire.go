package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashishkumar256/sunspot/auth"
	"github.com/ashishkumar256/sunspot/cache"
	"github.com/ashishkumar256/sunspot/config"
	"github.com/ashishkumar256/sunspot/dates"
	"github.com/ashishkumar256/sunspot/geocode"
	"github.com/ashishkumar256/sunspot/observe"
	"github.com/ashishkumar256/sunspot/sunapi"
	"github.com/ashishkumar256/sunspot/sunspot"
)

// errNoKeys is returned when the gate is on but no key is configured.
var errNoKeys = errors.New("auth is enabled but no API keys are configured; set auth.keys, auth.keys_file or auth.enabled=false")

// app holds the collaborators shared by serve and lookup.
type app struct {
	cfg      *config.Config
	obs      observe.Observer
	logger   observe.Logger
	store    cache.Store
	resolver *sunspot.Resolver
}

// newApp builds telemetry, the cache, the adapters and the resolver.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig())
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	logger := obs.Logger()

	metrics, err := observe.MetricsFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("metrics: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	store := cache.Connect(ctx, cfg.ConnectConfig(), logger)

	resolver, err := sunspot.New(sunspot.Options{
		Store:    store,
		Geocoder: newGeocoder(cfg, store, logger),
		Provider: newProvider(cfg),
		Dates:    dates.NewResolver(loc),
		Keys:     cache.NewKeyBuilder(cfg.Cache.Prefix),
		TTL:      cfg.TTLPolicy(),
		Logger:   logger,
		Tracer:   observe.NewTracer(obs.Tracer()),
		Metrics:  metrics,
	})
	if err != nil {
		_ = store.Close()
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	return &app{cfg: cfg, obs: obs, logger: logger, store: store, resolver: resolver}, nil
}

// close releases the cache connection and flushes telemetry.
func (a *app) close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return errors.Join(a.store.Close(), a.obs.Shutdown(ctx))
}

// newGeocoder wraps Nominatim in the configured coordinate cache.
func newGeocoder(cfg *config.Config, store cache.Store, logger observe.Logger) geocode.Geocoder {
	g := cfg.Geocode
	nominatim := geocode.NewNominatim(geocode.NominatimConfig{
		SearchURL:  g.SearchURL,
		ReverseURL: g.ReverseURL,
		UserAgent:  g.UserAgent,
		Timeout:    g.Timeout,
		Logger:     logger,
	})

	var c cache.Cache
	switch g.CacheBackend {
	case config.GeocodeCacheStore:
		c = store
	case config.GeocodeCacheMemory:
		c = cache.NewLocalCache(10 * time.Minute)
	case config.GeocodeCacheMemcache:
		c = cache.NewMemcacheCache(logger, g.MemcacheServers...)
	default:
		return nominatim
	}
	return geocode.NewCaching(nominatim, c, geocode.CachingConfig{TTL: g.CacheTTL, Logger: logger})
}

func newProvider(cfg *config.Config) sunapi.Provider {
	if cfg.SunAPI.Provider == config.SunAPIAstral {
		return sunapi.NewAstral()
	}
	formatted := cfg.SunAPI.Formatted
	return sunapi.NewRemote(sunapi.RemoteConfig{
		URL:       cfg.SunAPI.URL,
		Formatted: &formatted,
		Timeout:   cfg.SunAPI.Timeout,
	})
}

// newAuthenticator loads keys from the key file and inline config. It
// returns nil when the gate is disabled.
func newAuthenticator(cfg config.AuthConfig) (*auth.APIKeyAuthenticator, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	store := auth.NewMemoryKeyStore()
	if cfg.KeysFile != "" {
		loaded, err := auth.LoadAPIKeyFile(cfg.KeysFile, cfg.Hash)
		if err != nil {
			return nil, err
		}
		store = loaded
	}
	if err := auth.AddKeys(store, cfg.Keys, cfg.Hash); err != nil {
		return nil, err
	}
	if store.Len() == 0 {
		return nil, errNoKeys
	}
	return auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{Header: cfg.Header, Hash: cfg.Hash}, store), nil
}
