// Package session provides the in-memory session store. Sessions live only
// for the lifetime of the process; surviving restarts is explicitly out of
// scope.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skillforge/excel-interview/internal/domain"
)

// Store maps session ids to sessions and centralizes the concurrency
// discipline: all mutation happens under the per-session lock handed out by
// Acquire.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	ttl    time.Duration
	logger *zap.Logger
	done   chan struct{}
	once   sync.Once
}

type entry struct {
	mu      sync.Mutex
	session *domain.Session
}

// NewStore creates a store. Sessions (completed or not) are purged once they
// are older than ttl.
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Create registers a new session.
func (s *Store) Create(sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = &entry{session: sess}
}

// Acquire returns the session with its lock held, plus the release function.
// A concurrent holder causes ErrSessionBusy immediately; rejecting is
// preferred over queueing so client double-submits surface as errors instead
// of masquerading as latency.
func (s *Store) Acquire(id string) (*domain.Session, func(), error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}

	if !e.mu.TryLock() {
		return nil, nil, domain.ErrSessionBusy
	}
	return e.session, e.mu.Unlock, nil
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartJanitor launches the periodic sweep that purges expired sessions.
// Stop it with Close.
func (s *Store) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.done:
				return
			}
		}
	}()
}

// Close stops the janitor. Safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) sweep() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, e := range s.sessions {
		if e.session.CreatedAt.Before(cutoff) {
			delete(s.sessions, id)
			purged++
		}
	}
	if purged > 0 {
		s.logger.Info("purged expired sessions",
			zap.Int("purged", purged),
			zap.Int("remaining", len(s.sessions)),
		)
	}
}
