package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartAbandonedCartCleaner evicts idle anonymous carts with interval
func StartAbandonedCartCleaner(
	ctx context.Context,
	store *MemoryStore,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				removed, err := store.DeleteCartsIdleSince(ctx, cutoff)
				if err != nil {
					log.Error("failed to clean abandoned carts", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned abandoned carts", zap.Int("removed", removed))
				}
			}
		}
	}()
}
