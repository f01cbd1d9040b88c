// Package storagetest provides Store doubles for tests.
package storagetest

import (
	"context"
	"errors"
	"sync"

	"github.com/sivakirlampalli/Ecommerce-Website/pkg/storage"
)

// ErrInjected is returned by a FaultyStore operation that has been told to fail.
var ErrInjected = errors.New("storagetest: injected failure")

// FaultyStore wraps a MemoryStore and fails selected operations on demand.
type FaultyStore struct {
	*storage.MemoryStore

	mu      sync.Mutex
	failGet bool
	failSet bool
	failDel bool
	sets    int
	dels    int
	onDel   func(ctx context.Context, keys []string)
}

func NewFaultyStore() *FaultyStore {
	return &FaultyStore{MemoryStore: storage.NewMemoryStore()}
}

func (f *FaultyStore) FailGet(fail bool) { f.mu.Lock(); f.failGet = fail; f.mu.Unlock() }
func (f *FaultyStore) FailSet(fail bool) { f.mu.Lock(); f.failSet = fail; f.mu.Unlock() }
func (f *FaultyStore) FailDel(fail bool) { f.mu.Lock(); f.failDel = fail; f.mu.Unlock() }

// OnDel installs fn to run at the start of every Del, before the keys are removed.
func (f *FaultyStore) OnDel(fn func(ctx context.Context, keys []string)) {
	f.mu.Lock()
	f.onDel = fn
	f.mu.Unlock()
}

// Writes reports how many Set and Del calls reached the store, failed or not.
func (f *FaultyStore) Writes() (sets, dels int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets, f.dels
}

func (f *FaultyStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return "", ErrInjected
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *FaultyStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	f.sets++
	fail := f.failSet
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func (f *FaultyStore) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	f.dels++
	fail := f.failDel
	hook := f.onDel
	f.mu.Unlock()
	if hook != nil {
		hook(ctx, keys)
	}
	if fail {
		return ErrInjected
	}
	return f.MemoryStore.Del(ctx, keys...)
}
