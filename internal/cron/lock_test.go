package cron

import (
	"context"
	"testing"
	"time"

	"github.com/mosketh/storefront/pkg/redis"
)

type fakeRedisStore struct {
	data map[string]string
}

func (f *fakeRedisStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.(string)
	return true, nil
}

func (f *fakeRedisStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redis.ErrNil
	}
	return v, nil
}

func (f *fakeRedisStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func TestRedisLockExclusiveAcrossHolders(t *testing.T) {
	ctx := context.Background()
	store := &fakeRedisStore{data: map[string]string{}}
	a, err := NewRedisLock(store, "mk:lock:maintenance", 0)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	b, _ := NewRedisLock(store, "mk:lock:maintenance", 0)

	if ok, err := a.Acquire(ctx); err != nil || !ok {
		t.Fatalf("expected a to acquire, got %v %v", ok, err)
	}
	if ok, err := b.Acquire(ctx); err != nil || ok {
		t.Fatalf("expected b to be refused, got %v %v", ok, err)
	}
	if err := b.Release(ctx); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if _, held := store.data["mk:lock:maintenance"]; !held {
		t.Fatal("non-owner release must not delete the lock")
	}
	if err := a.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := b.Acquire(ctx); !ok {
		t.Fatal("expected b to acquire after release")
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", 0); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedisLock(&fakeRedisStore{}, "", 0); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	var l LocalLock
	if ok, _ := l.Acquire(ctx); !ok {
		t.Fatal("expected acquire")
	}
	if ok, _ := l.Acquire(ctx); ok {
		t.Fatal("expected second acquire to fail")
	}
	_ = l.Release(ctx)
	if ok, _ := l.Acquire(ctx); !ok {
		t.Fatal("expected acquire after release")
	}
}
