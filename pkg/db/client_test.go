package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sivakirlampalli/Ecommerce-Website/pkg/config"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/db/models"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.KVRecord{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	client := NewFromConn(conn, enums.StorageDriverSQLite)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestStoreRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if _, err := client.Get(ctx, "toystore:user"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := client.Set(ctx, "toystore:user", `{"id":"1","email":"a@example.com"}`); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := client.Get(ctx, "toystore:user")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != `{"id":"1","email":"a@example.com"}` {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestSetUpsertsExistingKey(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if err := client.Set(ctx, "toystore:cart", "[]"); err != nil {
		t.Fatalf("first set failed: %v", err)
	}
	if err := client.Set(ctx, "toystore:cart", `[{"id":"a"}]`); err != nil {
		t.Fatalf("second set failed: %v", err)
	}

	var count int64
	if err := client.DB().Model(&models.KVRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected upsert to keep 1 row, got %d", count)
	}
	got, err := client.Get(ctx, "toystore:cart")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != `[{"id":"a"}]` {
		t.Fatalf("expected latest value, got %q", got)
	}
}

func TestDelRemovesOnlyNamedKeys(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := client.Set(ctx, key, key); err != nil {
			t.Fatalf("set %s failed: %v", key, err)
		}
	}
	if err := client.Del(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if err := client.Del(ctx); err != nil {
		t.Fatalf("empty del should be a no-op, got %v", err)
	}
	if _, err := client.Get(ctx, "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected a to be deleted, got %v", err)
	}
	if v, err := client.Get(ctx, "c"); err != nil || v != "c" {
		t.Fatalf("expected c to survive, got %q %v", v, err)
	}
}

func TestPing(t *testing.T) {
	client := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if client.Driver() != enums.StorageDriverSQLite {
		t.Fatalf("unexpected driver %q", client.Driver())
	}
}

func TestNewValidatesInput(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, enums.StorageDriverSQLite, config.DBConfig{}, nil); err == nil {
		t.Fatal("expected missing dsn to fail")
	}
	if _, err := New(ctx, enums.StorageDriverRedis, config.DBConfig{DSN: "x.db"}, nil); err == nil {
		t.Fatal("expected unsupported driver to fail")
	}

	client, err := New(ctx, enums.StorageDriverSQLite, config.DBConfig{DSN: "file:new_validates?mode=memory&cache=shared", MaxOpenConns: 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()
	if err := client.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}
