package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store holds all live sessions, keyed by id. Sessions are memory-only; the
// sweeper evicts idle ones so abandoned uploads don't accumulate for the
// lifetime of the process.
//
// sync.RWMutex lets concurrent readers (Get) proceed in parallel while
// writers (Create/Delete/sweep) take the exclusive lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   *zap.Logger
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
	}
}

// Create registers a fresh session with default form state.
func (st *Store) Create() *Session {
	s := New()
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with the given id, or nil.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

// Delete removes a session, releasing its images.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Run sweeps expired sessions until the context is cancelled. Intended to be
// launched as a goroutine from main.
func (st *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(st.ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.sweep()
		}
	}
}

func (st *Store) sweep() {
	cutoff := time.Now().Add(-st.ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		if s.IdleSince().Before(cutoff) {
			delete(st.sessions, id)
			st.logger.Debug("evicted idle session", zap.String("session_id", id))
		}
	}
}
