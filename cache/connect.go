package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashishkumar256/sunspot/observe"
	"github.com/ashishkumar256/sunspot/resilience"
)

// Backend names accepted by Connect.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// ErrDisabled is the Unavailable reason when caching is switched off.
var ErrDisabled = errors.New("cache: disabled by configuration")

// ConnectConfig configures store construction and the startup connect retry.
type ConnectConfig struct {
	// Backend is redis|memory|none. Default: redis
	Backend string

	// Redis configures the redis backend.
	Redis RedisConfig

	// Attempts is the maximum number of ping attempts. Default: 5
	Attempts int

	// Backoff is the fixed wait between attempts. Default: 2s
	Backoff time.Duration

	// PingTimeout bounds each ping attempt. Default: 2s
	PingTimeout time.Duration
}

// DialFunc constructs a store without contacting it.
type DialFunc func() (Store, error)

// Connect builds the configured store and verifies it is reachable.
//
// Connect never fails: when the backend cannot be built or does not answer
// within the retry budget, it logs the cause and returns Unavailable. The
// decision is final for the life of the returned value.
func Connect(ctx context.Context, cfg ConnectConfig, logger observe.Logger) Store {
	if logger == nil {
		logger = observe.NopLogger()
	}

	switch cfg.Backend {
	case BackendNone:
		logger.Info(ctx, "cache disabled", observe.Field{Key: "cache.backend", Value: cfg.Backend})
		return Unavailable{Reason: ErrDisabled}
	case BackendMemory:
		logger.Info(ctx, "using in-memory cache", observe.Field{Key: "cache.backend", Value: cfg.Backend})
		return NewMemoryStore()
	case BackendRedis, "":
		return ConnectWith(ctx, func() (Store, error) {
			return NewRedisStore(cfg.Redis, logger)
		}, cfg, logger)
	default:
		err := fmt.Errorf("cache: unknown backend %q", cfg.Backend)
		logger.Error(ctx, "cache backend not recognised", observe.Field{Key: "error", Value: err.Error()})
		return Unavailable{Reason: err}
	}
}

// ConnectWith dials a store and pings it under a constant-backoff retry.
func ConnectWith(ctx context.Context, dial DialFunc, cfg ConnectConfig, logger observe.Logger) Store {
	if logger == nil {
		logger = observe.NopLogger()
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 5
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 2 * time.Second
	}

	store, err := dial()
	if err != nil {
		logger.Warn(ctx, "cache unavailable, continuing without cache",
			observe.Field{Key: "error", Value: err.Error()},
		)
		return Unavailable{Reason: err}
	}

	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  cfg.Attempts,
		InitialDelay: cfg.Backoff,
		MaxDelay:     cfg.Backoff,
		Strategy:     resilience.BackoffConstant,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.Warn(ctx, "cache ping failed, retrying",
				observe.Field{Key: "attempt", Value: attempt},
				observe.Field{Key: "max_attempts", Value: cfg.Attempts},
				observe.Field{Key: "backoff_ms", Value: delay.Milliseconds()},
				observe.Field{Key: "error", Value: err.Error()},
			)
		},
	})

	err = retry.Execute(ctx, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
		defer cancel()
		return store.Ping(pingCtx)
	})
	if err != nil {
		_ = store.Close()
		logger.Warn(ctx, "cache unavailable, continuing without cache",
			observe.Field{Key: "attempts", Value: cfg.Attempts},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return Unavailable{Reason: err}
	}

	logger.Info(ctx, "connected to cache")
	return store
}
