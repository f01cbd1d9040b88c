package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/config"
	pkgerrors "github.com/sivakirlampalli/Ecommerce-Website/pkg/errors"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/storage"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.Set(ctx, "toystore:cart", `[{"id":"1"}]`); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if mock.ttls["toystore:cart"] != 0 {
		t.Fatalf("expected no expiry, got %v", mock.ttls["toystore:cart"])
	}
	got, err := client.Get(ctx, "toystore:cart")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != `[{"id":"1"}]` {
		t.Fatalf("unexpected value %q", got)
	}

	if err := client.Del(ctx, "toystore:cart", "toystore:user"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, "toystore:cart"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected storage.ErrNotFound after delete, got %v", err)
	}
	if err := client.Del(ctx); err != nil {
		t.Fatalf("empty delete should be a no-op, got %v", err)
	}
	if mock.delCalls != 1 {
		t.Fatalf("expected a single DEL round trip, got %d", mock.delCalls)
	}
}

func TestGetPropagatesTransportErrors(t *testing.T) {
	mock := newMockCmdable()
	mock.getErr = errors.New("connection reset")
	client := &Client{store: mock}

	_, err := client.Get(context.Background(), "toystore:user")
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodePersistence) {
		t.Fatalf("expected persistence code, got %v", err)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Set(context.Background(), "k", "v"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error from uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without raw client should be a no-op, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{
		Address:     "localhost:6380",
		DB:          2,
		PoolSize:    7,
		DialTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 2 || opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 3 || opts.PoolSize != 5 {
		t.Fatalf("url options not applied: %+v", opts)
	}
}

type mockCmdable struct {
	data     map[string]string
	ttls     map[string]time.Duration
	getErr   error
	delCalls int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.delCalls++
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
