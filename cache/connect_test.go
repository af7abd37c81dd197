package cache

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/ashishkumar256/sunspot/observe"
)

// flakyStore fails Ping until it has been called failures+1 times.
type flakyStore struct {
	*MemoryStore
	failures int32
	pings    atomic.Int32
	closed   atomic.Bool
}

func (f *flakyStore) Ping(context.Context) error {
	if f.pings.Add(1) <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func (f *flakyStore) Close() error {
	f.closed.Store(true)
	return nil
}

func fastConnect(attempts int) ConnectConfig {
	return ConnectConfig{Attempts: attempts, Backoff: time.Millisecond, PingTimeout: time.Second}
}

func TestConnectWith_RetriesThenSucceeds(t *testing.T) {
	fs := &flakyStore{MemoryStore: NewMemoryStore(), failures: 2}
	var logs bytes.Buffer

	s := ConnectWith(context.Background(), func() (Store, error) { return fs, nil },
		fastConnect(5), observe.NewLoggerWithWriter("debug", &logs))

	if IsUnavailable(s) {
		t.Fatal("expected a live store after transient failures")
	}
	if got := fs.pings.Load(); got != 3 {
		t.Errorf("pings = %d, want 3", got)
	}
	if n := strings.Count(logs.String(), "cache ping failed, retrying"); n != 2 {
		t.Errorf("expected 2 retry log lines, got %d:\n%s", n, logs.String())
	}
}

func TestConnectWith_GivesUpAfterMaxAttempts(t *testing.T) {
	fs := &flakyStore{MemoryStore: NewMemoryStore(), failures: 100}

	s := ConnectWith(context.Background(), func() (Store, error) { return fs, nil }, fastConnect(3), nil)

	if !IsUnavailable(s) {
		t.Fatalf("expected Unavailable, got %T", s)
	}
	if got := fs.pings.Load(); got != 3 {
		t.Errorf("pings = %d, want exactly 3 attempts", got)
	}
	if !fs.closed.Load() {
		t.Error("unreachable store was not closed")
	}
	if err := s.Ping(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Ping() = %v, want ErrUnavailable", err)
	}
}

func TestConnectWith_DialError(t *testing.T) {
	s := ConnectWith(context.Background(), func() (Store, error) {
		return nil, errors.New("bad address")
	}, fastConnect(3), nil)

	if !IsUnavailable(s) {
		t.Fatalf("expected Unavailable, got %T", s)
	}
}

func TestConnect_Backends(t *testing.T) {
	ctx := context.Background()

	if s := Connect(ctx, ConnectConfig{Backend: BackendMemory}, nil); IsUnavailable(s) {
		t.Error("memory backend should be available")
	}

	none := Connect(ctx, ConnectConfig{Backend: BackendNone}, nil)
	if !IsUnavailable(none) {
		t.Fatalf("none backend should be Unavailable, got %T", none)
	}
	if err := none.Ping(ctx); !errors.Is(err, ErrUnavailable) || !strings.Contains(err.Error(), ErrDisabled.Error()) {
		t.Errorf("Ping() = %v, want disabled reason", err)
	}

	if s := Connect(ctx, ConnectConfig{Backend: "etcd"}, nil); !IsUnavailable(s) {
		t.Error("unknown backend should be Unavailable")
	}
}

func TestConnect_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	s := Connect(context.Background(), ConnectConfig{
		Backend: BackendRedis,
		Redis:   RedisConfig{Addr: mr.Addr()},
	}, nil)
	defer s.Close()

	if _, ok := s.(*RedisStore); !ok {
		t.Fatalf("expected *RedisStore, got %T", s)
	}
}

func TestConnect_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := fastConnect(2)
	cfg.Backend = BackendRedis
	cfg.Redis = RedisConfig{Addr: addr, DialTimeout: 100 * time.Millisecond}

	s := Connect(context.Background(), cfg, nil)
	if !IsUnavailable(s) {
		t.Fatalf("expected Unavailable for a closed server, got %T", s)
	}
}
