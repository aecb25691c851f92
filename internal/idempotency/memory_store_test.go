package idempotency

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_TryLock(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	locked, err := store.TryLock(ctx, "orders.create", "key-1")
	if err != nil || !locked {
		t.Fatalf("first lock: locked=%v err=%v", locked, err)
	}

	locked, err = store.TryLock(ctx, "orders.create", "key-1")
	if err != nil || locked {
		t.Fatalf("second lock: locked=%v err=%v", locked, err)
	}

	// Другой scope не пересекается с первым.
	locked, err = store.TryLock(ctx, "other.scope", "key-1")
	if err != nil || !locked {
		t.Fatalf("other scope: locked=%v err=%v", locked, err)
	}
}

func TestMemoryStore_Release(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if _, err := store.TryLock(ctx, "orders.create", "key-1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Release(ctx, "orders.create", "key-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if locked, _ := store.TryLock(ctx, "orders.create", "key-1"); !locked {
		t.Fatal("expected lock to be available after release")
	}

	// Ключ с сохранённым результатом release не отпускает.
	if err := store.Remember(ctx, "orders.create", "key-1", "order-42"); err != nil {
		t.Fatal(err)
	}
	if err := store.Release(ctx, "orders.create", "key-1"); err != nil {
		t.Fatal(err)
	}
	if value, found, _ := store.Recall(ctx, "orders.create", "key-1"); !found || value != "order-42" {
		t.Fatalf("remembered result lost after release: value=%q found=%v", value, found)
	}
}

func TestMemoryStore_RememberRecall(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if _, found, err := store.Recall(ctx, "orders.create", "key-1"); err != nil || found {
		t.Fatalf("recall before remember: found=%v err=%v", found, err)
	}

	if _, err := store.TryLock(ctx, "orders.create", "key-1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Remember(ctx, "orders.create", "key-1", "order-42"); err != nil {
		t.Fatalf("remember: %v", err)
	}

	value, found, err := store.Recall(ctx, "orders.create", "key-1")
	if err != nil || !found || value != "order-42" {
		t.Fatalf("recall: value=%q found=%v err=%v", value, found, err)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	if _, err := store.TryLock(ctx, "orders.create", "key-1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Remember(ctx, "orders.create", "key-1", "order-42"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, found, _ := store.Recall(ctx, "orders.create", "key-1"); found {
		t.Fatal("expected expired entry to be forgotten")
	}
	if locked, _ := store.TryLock(ctx, "orders.create", "key-1"); !locked {
		t.Fatal("expected lock to be available after TTL")
	}
}
