package session

import (
	"context"
	"log/slog"
	"time"
)

// EvictCallback is called with the ids removed by one sweep.
type EvictCallback func(ids []string)

// StartSweeper runs a background goroutine that periodically evicts sessions
// idle for longer than ttl. Eviction forgets the history and the turn count,
// so a caller returning with an evicted session id gets a new quota. It
// returns immediately; the goroutine stops when ctx is cancelled. A
// non-positive ttl disables the sweeper.
func StartSweeper(ctx context.Context, st *Store, ttl, interval time.Duration, onEvict EvictCallback) {
	if ttl <= 0 || interval <= 0 {
		slog.Info("Session sweeper disabled", "ttl", ttl, "interval", interval)
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweep(st, ttl, onEvict)
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweep(st *Store, ttl time.Duration, onEvict EvictCallback) {
	evicted := st.EvictIdle(ttl)
	if len(evicted) == 0 {
		return
	}

	slog.Info("Session sweeper evicted idle sessions", "count", len(evicted), "remaining", st.Len())
	if onEvict != nil {
		onEvict(evicted)
	}
}
