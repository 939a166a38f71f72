package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/chatgate/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	insertMaxRetries = 3
	insertBaseDelay  = 50 * time.Millisecond
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS conversation_events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		role TEXT,
		content TEXT,
		turn_count INTEGER NOT NULL DEFAULT 0,
		request_id TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversation_events_session ON conversation_events(session_id, seq);
	CREATE INDEX IF NOT EXISTS idx_conversation_events_created ON conversation_events(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// InsertEvent appends an event, retrying with exponential backoff while the
// database is busy.
func (s *SQLiteStore) InsertEvent(ctx context.Context, event *domain.ConversationEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var err error
	for i := 0; i < insertMaxRetries; i++ {
		err = s.insertEventOnce(ctx, event)
		if err == nil {
			return nil
		}
		if !isBusyError(err) || i == insertMaxRetries-1 {
			break
		}

		delay := insertBaseDelay * time.Duration(1<<i) // 50ms, 100ms
		slog.Debug("InsertEvent failed with SQLITE_BUSY, retrying",
			"session_id", event.SessionID,
			"attempt", i+1,
			"delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("insert conversation event: %w", ctx.Err())
		}
	}
	return err
}

func (s *SQLiteStore) insertEventOnce(ctx context.Context, event *domain.ConversationEvent) error {
	query := `
		INSERT INTO conversation_events (
			id, session_id, event_type, role, content, turn_count, request_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var role interface{}
	if event.Role != "" {
		role = string(event.Role)
	}
	var requestID interface{}
	if event.RequestID != "" {
		requestID = event.RequestID
	}

	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.SessionID, string(event.EventType), role,
		event.Content, event.Count, requestID, event.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert conversation event: %w", err)
	}
	return nil
}

// ListEvents returns the events recorded for a session in insertion order.
func (s *SQLiteStore) ListEvents(ctx context.Context, sessionID string) ([]*domain.ConversationEvent, error) {
	query := `
		SELECT id, session_id, event_type, role, content, turn_count, request_id, created_at
		FROM conversation_events WHERE session_id = ? ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query conversation events: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close conversation event rows", "error", closeErr)
		}
	}()

	var events []*domain.ConversationEvent
	for rows.Next() {
		var event domain.ConversationEvent
		var eventType string
		var role, content, requestID sql.NullString
		var createdAt int64

		if err := rows.Scan(
			&event.ID, &event.SessionID, &eventType, &role,
			&content, &event.Count, &requestID, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversation event row: %w", err)
		}

		event.EventType = domain.ConversationEventType(eventType)
		event.Role = domain.Role(role.String)
		event.Content = content.String
		event.RequestID = requestID.String
		event.CreatedAt = time.UnixMilli(createdAt)
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation events: %w", err)
	}

	return events, nil
}

// CleanupEventsOlderThan deletes events created before now minus age.
func (s *SQLiteStore) CleanupEventsOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	threshold := time.Now().Add(-age).UnixMilli()
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversation_events WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup conversation events: %w", err)
	}
	return result.RowsAffected()
}
