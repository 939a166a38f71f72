package chat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/chatgate/internal/domain"
	"github.com/ashureev/chatgate/internal/store"
)

const archiveWriteTimeout = 5 * time.Second

// ConversationLogger receives chat events for archiving. Log never blocks
// a chat turn.
type ConversationLogger interface {
	Log(event domain.ConversationEvent)
	Close() error
}

// ConversationLogConfig controls the archive queue.
type ConversationLogConfig struct {
	QueueSize int
}

type noopConversationLogger struct{}

func (noopConversationLogger) Log(domain.ConversationEvent) {}
func (noopConversationLogger) Close() error                 { return nil }

// NoopConversationLogger returns a logger that discards every event.
func NoopConversationLogger() ConversationLogger {
	return noopConversationLogger{}
}

type archiveLogger struct {
	repo   store.Repository
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan domain.ConversationEvent
	done   chan struct{}
}

// NewConversationLogger starts a single writer goroutine that drains a
// bounded queue into repo. When the queue is full new events are dropped.
func NewConversationLogger(cfg ConversationLogConfig, repo store.Repository, logger *slog.Logger) (ConversationLogger, error) {
	if repo == nil {
		return nil, errors.New("conversation logger requires a repository")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}

	l := &archiveLogger{
		repo:   repo,
		logger: logger,
		queue:  make(chan domain.ConversationEvent, cfg.QueueSize),
		done:   make(chan struct{}),
	}
	go l.run()
	return l, nil
}

func (l *archiveLogger) Log(event domain.ConversationEvent) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	select {
	case l.queue <- event:
	default:
		l.logger.Warn("conversation archive queue full, dropping event",
			"session_id", event.SessionID,
			"event_type", event.EventType,
		)
	}
}

// Close stops accepting events and waits until queued events are written.
func (l *archiveLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	return nil
}

func (l *archiveLogger) run() {
	defer close(l.done)
	for event := range l.queue {
		ctx, cancel := context.WithTimeout(context.Background(), archiveWriteTimeout)
		if err := l.repo.InsertEvent(ctx, &event); err != nil {
			l.logger.Warn("failed to archive conversation event",
				"session_id", event.SessionID,
				"event_type", event.EventType,
				"error", err,
			)
		}
		cancel()
	}
}
