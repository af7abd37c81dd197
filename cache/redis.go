package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/ashishkumar256/sunspot/observe"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	// Addr is host:port of the Redis server. Default: "localhost:6379"
	Addr string

	// Password is the AUTH password (optional).
	Password string

	// DB selects the logical database.
	DB int

	// DialTimeout bounds connection establishment. Default: 5s
	DialTimeout time.Duration

	// ScanCount is the COUNT hint for SCAN. Default: 100
	ScanCount int64

	// Tracing instruments the client with OpenTelemetry spans.
	Tracing bool
}

// RedisStore is a Store backed by Redis.
//
// go-redis clients are safe for concurrent use and pool connections, so a
// single RedisStore is shared across all requests.
type RedisStore struct {
	client    redis.UniversalClient
	scanCount int64
	logger    observe.Logger
}

// NewRedisStore creates a RedisStore. It does not contact the server; use
// Ping or Connect for that.
func NewRedisStore(cfg RedisConfig, logger observe.Logger) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	if cfg.Tracing {
		if err := redisotel.InstrumentTracing(client); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("cache: instrument redis tracing: %w", err)
		}
	}

	s := NewRedisStoreFromClient(client, logger)
	if cfg.ScanCount > 0 {
		s.scanCount = cfg.ScanCount
	}
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient, logger observe.Logger) *RedisStore {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &RedisStore{
		client:    client,
		scanCount: 100,
		logger:    logger,
	}
}

// Get retrieves a value. Transport errors are logged and reported as a miss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn(ctx, "redis get failed",
				observe.Field{Key: "cache.key", Value: key},
				observe.Field{Key: "error", Value: err.Error()},
			)
		}
		return nil, false
	}
	return b, true
}

// Set stores a value with SET EX. TTL=0 means no caching.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Idempotent.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: redis del %q: %w", key, err)
	}
	return nil
}

// Keys enumerates matching keys with SCAN. Matches come back in Redis's
// cursor order. A failure mid-scan returns what was collected so far.
func (s *RedisStore) Keys(ctx context.Context, pattern string) []string {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, s.scanCount).Result()
		if err != nil {
			s.logger.Warn(ctx, "redis scan failed",
				observe.Field{Key: "cache.pattern", Value: pattern},
				observe.Field{Key: "error", Value: err.Error()},
			)
			return keys
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys
		}
	}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// TTL returns the remaining lifetime of key as reported by Redis.
func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, bool) {
	d, err := s.client.TTL(ctx, key).Result()
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// Ensure RedisStore implements Store
var (
	_ Store       = (*RedisStore)(nil)
	_ TTLReporter = (*RedisStore)(nil)
)
