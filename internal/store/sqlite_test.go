package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/chatgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestInsertAndListEvents(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	user := &domain.ConversationEvent{
		SessionID: "s1",
		EventType: domain.EventUserMessage,
		Role:      domain.RoleUser,
		Content:   "hello",
		RequestID: "req-1",
	}
	require.NoError(t, repo.InsertEvent(ctx, user))
	assert.NotEmpty(t, user.ID)

	require.NoError(t, repo.InsertEvent(ctx, &domain.ConversationEvent{
		SessionID: "s1",
		EventType: domain.EventAssistantMessage,
		Role:      domain.RoleAssistant,
		Content:   "hi",
		Count:     1,
	}))
	require.NoError(t, repo.InsertEvent(ctx, &domain.ConversationEvent{
		SessionID: "s2",
		EventType: domain.EventQuotaExceeded,
		Count:     5,
	}))

	events, err := repo.ListEvents(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, user.ID, events[0].ID)
	assert.Equal(t, domain.EventUserMessage, events[0].EventType)
	assert.Equal(t, domain.RoleUser, events[0].Role)
	assert.Equal(t, "hello", events[0].Content)
	assert.Equal(t, "req-1", events[0].RequestID)

	assert.Equal(t, domain.EventAssistantMessage, events[1].EventType)
	assert.Equal(t, 1, events[1].Count)
	assert.Empty(t, events[1].RequestID)

	other, err := repo.ListEvents(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Empty(t, other[0].Role)
}

func TestListEventsUnknownSession(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)

	events, err := repo.ListEvents(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCleanupEventsOlderThan(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertEvent(ctx, &domain.ConversationEvent{
		SessionID: "s1",
		EventType: domain.EventUserMessage,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, repo.InsertEvent(ctx, &domain.ConversationEvent{
		SessionID: "s1",
		EventType: domain.EventUserMessage,
	}))

	deleted, err := repo.CleanupEventsOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, err := repo.ListEvents(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPing(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestIsBusyError(t *testing.T) {
	t.Parallel()

	assert.False(t, isBusyError(nil))
	assert.True(t, isBusyError(errors.New("SQLITE_BUSY: try again")))
	assert.True(t, isBusyError(errors.New("database is locked")))
	assert.False(t, isBusyError(errors.New("no such table")))
}
