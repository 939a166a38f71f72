package chat

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/chatgate/internal/credential"
	"github.com/ashureev/chatgate/internal/domain"
	"github.com/ashureev/chatgate/internal/session"
	"github.com/ashureev/chatgate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRepo holds every insert until release is closed.
type blockingRepo struct {
	store.Repository
	release chan struct{}

	mu     sync.Mutex
	events []domain.ConversationEvent
}

func (r *blockingRepo) InsertEvent(_ context.Context, e *domain.ConversationEvent) error {
	<-r.release
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return nil
}

func (r *blockingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type failingRepo struct {
	store.Repository
}

func (failingRepo) InsertEvent(context.Context, *domain.ConversationEvent) error {
	return errors.New("disk full")
}

func TestNewConversationLoggerRequiresRepo(t *testing.T) {
	_, err := NewConversationLogger(ConversationLogConfig{QueueSize: 1}, nil, nil)
	require.Error(t, err)
}

func TestConversationLoggerArchivesChatTurns(t *testing.T) {
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	cl, err := NewConversationLogger(ConversationLogConfig{QueueSize: 16}, repo, nil)
	require.NoError(t, err)

	svc := NewService(credential.New("pw"), session.NewStore("sys"), &fakeCompleter{}, Config{MessageLimit: 1},
		WithConversationLogger(cl),
	)
	_, err = svc.Chat(context.Background(), Request{Message: "hi", Password: "pw", SessionID: "s1", RequestID: "req-1"})
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), Request{Message: "again", Password: "pw", SessionID: "s1"})
	require.ErrorIs(t, err, ErrQuotaExceeded)

	require.NoError(t, cl.Close())

	events, err := repo.ListEvents(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, domain.EventUserMessage, events[0].EventType)
	assert.Equal(t, "hi", events[0].Content)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, domain.EventAssistantMessage, events[1].EventType)
	assert.Equal(t, "re: hi", events[1].Content)
	assert.Equal(t, 1, events[1].Count)
	assert.Equal(t, domain.EventQuotaExceeded, events[2].EventType)
	for _, e := range events {
		assert.NotEmpty(t, e.ID)
	}
}

func TestConversationLoggerDropsWhenQueueFull(t *testing.T) {
	repo := &blockingRepo{release: make(chan struct{})}
	cl, err := NewConversationLogger(ConversationLogConfig{QueueSize: 2}, repo, nil)
	require.NoError(t, err)

	// The writer takes at most one event off the queue while blocked, so at
	// most three of these can be kept.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			cl.Log(domain.ConversationEvent{SessionID: "s", EventType: domain.EventUserMessage})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Log blocked on a full queue")
	}

	close(repo.release)
	require.NoError(t, cl.Close())
	assert.LessOrEqual(t, repo.count(), 3)
	assert.GreaterOrEqual(t, repo.count(), 2)
}

func TestConversationLoggerCloseIsIdempotent(t *testing.T) {
	cl, err := NewConversationLogger(ConversationLogConfig{}, failingRepo{}, nil)
	require.NoError(t, err)

	cl.Log(domain.ConversationEvent{SessionID: "s", EventType: domain.EventUserMessage})
	require.NoError(t, cl.Close())
	require.NoError(t, cl.Close())

	// Logging after close is a no-op.
	cl.Log(domain.ConversationEvent{SessionID: "s"})
}

func TestNoopConversationLogger(t *testing.T) {
	l := NoopConversationLogger()
	l.Log(domain.ConversationEvent{})
	assert.NoError(t, l.Close())
}
