package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/shopfront/internal/models"
)

func seededStoreWithIdleCart(t *testing.T, code string, idleFor time.Duration) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	store.SeedProducts([]models.Product{{ID: 1, Name: "Socks", Category: "men", Price: 9.90}})
	if err := store.AddItem(context.Background(), code, 1, 1, "M"); err != nil {
		t.Fatalf("failed to add item: %v", err)
	}
	store.mu.Lock()
	store.touched[code] = time.Now().Add(-idleFor)
	store.mu.Unlock()
	return store
}

func TestStartAbandonedCartCleaner_EvictsIdleCarts(t *testing.T) {
	store := seededStoreWithIdleCart(t, "abcABC0123", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartAbandonedCartCleaner(ctx, store, 10*time.Millisecond, 30*time.Minute, zap.NewNop())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := store.GetCart(context.Background(), "abcABC0123"); errors.Is(err, ErrNotFound) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("idle cart was not evicted")
}

func TestStartAbandonedCartCleaner_KeepsActiveCarts(t *testing.T) {
	store := seededStoreWithIdleCart(t, "abcABC0123", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartAbandonedCartCleaner(ctx, store, 10*time.Millisecond, 30*time.Minute, zap.NewNop())

	time.Sleep(100 * time.Millisecond)

	if _, err := store.GetCart(context.Background(), "abcABC0123"); err != nil {
		t.Errorf("active cart was evicted: %v", err)
	}
}

func TestStartAbandonedCartCleaner_CancelBeforeTicker(t *testing.T) {
	store := seededStoreWithIdleCart(t, "abcABC0123", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	StartAbandonedCartCleaner(ctx, store, 100*time.Millisecond, 30*time.Minute, zap.NewNop())
	cancel()

	time.Sleep(200 * time.Millisecond)

	if _, err := store.GetCart(context.Background(), "abcABC0123"); err != nil {
		t.Errorf("cart was evicted after cancel: %v", err)
	}
}
