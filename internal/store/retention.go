package store

import (
	"context"
	"log/slog"
	"time"
)

// StartRetentionWorker runs a background goroutine that periodically deletes
// archived events older than retention. A non-positive retention keeps
// everything.
func StartRetentionWorker(ctx context.Context, repo Repository, retention, interval time.Duration) {
	if retention <= 0 || interval <= 0 {
		slog.Info("Conversation archive retention disabled")
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Conversation archive retention worker started", "interval", interval, "retention", retention)

		for {
			select {
			case <-ticker.C:
				if deleted, err := repo.CleanupEventsOlderThan(ctx, retention); err != nil {
					slog.Error("Retention worker failed to cleanup conversation events", "error", err)
				} else if deleted > 0 {
					slog.Info("Retention worker removed conversation events", "count", deleted)
				}
			case <-ctx.Done():
				slog.Info("Retention worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
