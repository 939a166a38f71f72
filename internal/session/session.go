// Package session keeps per-session conversation state in memory.
package session

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/ashureev/chatgate/internal/domain"
	"golang.org/x/sync/semaphore"
)

// Session holds the turn count and message history for one caller-supplied
// session id. A chat turn must hold the turn lock (Acquire/Release) for its
// whole read-modify-write sequence; Count, History, AppendUser and
// RecordReply assume the caller holds it.
type Session struct {
	id        string
	createdAt time.Time
	lastSeen  atomic.Int64 // unix nanoseconds

	turn    *semaphore.Weighted // weight 1
	count   int
	history []domain.Message
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID        string
	Count     int
	History   []domain.Message
	CreatedAt time.Time
	LastSeen  time.Time
}

func newSession(id string, system domain.Message, now time.Time) *Session {
	s := &Session{
		id:        id,
		createdAt: now,
		turn:      semaphore.NewWeighted(1),
		history:   []domain.Message{system},
	}
	s.touch(now)
	return s
}

// Acquire waits for exclusive access for a chat turn. Waiters are served in
// arrival order. If ctx ends first the turn is not taken and ctx.Err() is
// returned.
func (s *Session) Acquire(ctx context.Context) error {
	// A free turn is taken even when ctx is already done.
	if s.turn.TryAcquire(1) {
		return nil
	}
	return s.turn.Acquire(ctx, 1)
}

// TryAcquire takes the turn lock only if it is free.
func (s *Session) TryAcquire() bool {
	return s.turn.TryAcquire(1)
}

// Release gives back the turn lock taken by Acquire or TryAcquire.
func (s *Session) Release() {
	s.turn.Release(1)
}

// Count returns the number of answered turns.
func (s *Session) Count() int {
	return s.count
}

// History returns a copy of the message history.
func (s *Session) History() []domain.Message {
	return slices.Clone(s.history)
}

// AppendUser records the user's message for the current turn.
func (s *Session) AppendUser(content string) {
	s.history = append(s.history, domain.Message{Role: domain.RoleUser, Content: content})
}

// RecordReply appends the assistant reply, increments the turn count and
// returns the new count.
func (s *Session) RecordReply(content string) int {
	s.history = append(s.history, domain.Message{Role: domain.RoleAssistant, Content: content})
	s.count++
	return s.count
}

// Snapshot waits for the turn lock and copies the session state.
func (s *Session) Snapshot() Snapshot {
	_ = s.turn.Acquire(context.Background(), 1) // never fails without a deadline
	defer s.turn.Release(1)

	return Snapshot{
		ID:        s.id,
		Count:     s.count,
		History:   slices.Clone(s.history),
		CreatedAt: s.createdAt,
		LastSeen:  s.LastSeen(),
	}
}

// LastSeen returns the last time the session was looked up.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}
