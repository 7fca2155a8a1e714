package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an idle session is kept
const DefaultTTL = 2 * time.Hour

// ErrNotFound is returned for unknown or expired sessions
var ErrNotFound = errors.New("session not found")

// Store persists sessions. Update must apply fn atomically: concurrent
// updates of one session are serialized and never lose writes.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	// Update loads the session, applies fn and saves the result unless fn
	// returns an error. The saved session is returned.
	Update(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// SweepInterval derives how often expired sessions are removed
func SweepInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/4, time.Second), 5*time.Minute)
}

// RunSweeper calls sweep on every tick until stop is closed
func RunSweeper(interval time.Duration, stop <-chan struct{}, sweep func(now time.Time)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			sweep(now)
		}
	}
}
