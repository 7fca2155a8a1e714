package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger

	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a store that expires sessions idle for longer than
// ttl and starts its sweeper
func NewMemoryStore(ttl time.Duration, logger *zap.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MemoryStore{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		stop:     make(chan struct{}),
	}
	go RunSweeper(SweepInterval(ttl), s.stop, s.Sweep)
	return s
}

// Create stores a new session with default state
func (s *MemoryStore) Create(_ context.Context) (*Session, error) {
	sess := New(uuid.New(), s.now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess.Clone(), nil
}

// Get returns a copy of a live session
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

// Update applies fn to a copy under the store lock and keeps the copy on success
func (s *MemoryStore) Update(_ context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return nil, ErrNotFound
	}

	updated := sess.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	updated.ID = id
	updated.UpdatedAt = s.now()
	s.sessions[id] = updated
	return updated.Clone(), nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle since before now minus the TTL
func (s *MemoryStore) Sweep(now time.Time) {
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Debug("expired sessions removed", zap.Int("count", removed))
	}
}

// Close stops the sweeper
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}

// live returns the session if it has not expired. Callers hold s.mu.
func (s *MemoryStore) live(id uuid.UUID) (*Session, bool) {
	sess, ok := s.sessions[id]
	if !ok || s.now().Sub(sess.UpdatedAt) > s.ttl {
		return nil, false
	}
	return sess, true
}
