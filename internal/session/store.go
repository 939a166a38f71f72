package session

import (
	"sync"
	"time"

	"github.com/ashureev/chatgate/internal/domain"
)

// Store is a concurrency-safe map of sessions keyed by caller-supplied id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	system   domain.Message
	now      func() time.Time
}

// NewStore creates an empty store whose sessions start with the given
// system instruction.
func NewStore(systemInstruction string) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		system:   domain.SystemMessage(systemInstruction),
		now:      time.Now,
	}
}

// GetOrCreate returns the session for id, creating it with the system
// instruction as its only history record if it does not exist yet.
// Every call refreshes the session's last-seen time.
func (st *Store) GetOrCreate(id string) *Session {
	st.mu.RLock()
	s, ok := st.sessions[id]
	if ok {
		// Touch while still holding the read lock; EvictIdle takes the write lock.
		s.touch(st.now())
	}
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	if s, ok := st.sessions[id]; ok {
		s.touch(now)
		return s
	}
	s = newSession(id, st.system, now)
	st.sessions[id] = s
	return s
}

// Lookup returns the session for id without creating or touching it.
func (st *Store) Lookup(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// EvictIdle removes sessions not seen for longer than ttl and returns their
// ids. Sessions whose turn lock is held are skipped. An evicted id starts
// over: the next GetOrCreate builds a fresh session with a zero count and a
// full message quota.
func (st *Store) EvictIdle(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}
	cutoff := st.now().Add(-ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	var evicted []string
	for id, s := range st.sessions {
		if s.LastSeen().After(cutoff) {
			continue
		}
		if !s.TryAcquire() {
			continue
		}
		delete(st.sessions, id)
		s.Release()
		evicted = append(evicted, id)
	}
	return evicted
}
