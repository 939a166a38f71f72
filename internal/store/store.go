// Package store provides the conversation archive interface and its SQLite
// implementation. The archive is append-only; sessions are never rebuilt
// from it.
package store

import (
	"context"
	"time"

	"github.com/ashureev/chatgate/internal/domain"
)

// Repository defines the interface for archiving conversation events.
type Repository interface {
	// InsertEvent appends an event. Events without an ID get a fresh UUID.
	InsertEvent(ctx context.Context, event *domain.ConversationEvent) error

	// ListEvents returns the events recorded for a session in insertion order.
	// The server never reads the archive back; this is for tests and offline
	// inspection.
	ListEvents(ctx context.Context, sessionID string) ([]*domain.ConversationEvent, error)

	// CleanupEventsOlderThan deletes events older than age and returns the count.
	CleanupEventsOlderThan(ctx context.Context, age time.Duration) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
