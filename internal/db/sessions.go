package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-enhancer/internal/session"
	"go.uber.org/zap"
)

// SessionStore is a session.Store backed by the sessions table. Each
// session is one JSONB document.
type SessionStore struct {
	db     *DB
	ttl    time.Duration
	logger *zap.Logger

	stop      chan struct{}
	closeOnce sync.Once
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore creates the store and starts its sweeper. Closing the
// store also closes db.
func NewSessionStore(db *DB, ttl time.Duration, logger *zap.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionStore{db: db, ttl: ttl, logger: logger, stop: make(chan struct{})}
	go session.RunSweeper(session.SweepInterval(ttl), s.stop, func(time.Time) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Warn("session sweep failed", zap.Error(err))
		}
	})
	return s
}

// Create inserts a session with default state
func (s *SessionStore) Create(ctx context.Context) (*session.Session, error) {
	sess := session.New(uuid.New(), time.Now().UTC())

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO sessions (id, data, created_at, updated_at) VALUES ($1, $2, $3, $3)`,
		sess.ID, data, sess.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// Get loads a live session
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var data []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT data FROM sessions WHERE id = $1 AND updated_at > $2`,
		id, s.cutoff(),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return decodeSession(data)
}

// Update locks the row with SELECT ... FOR UPDATE, applies fn and writes the
// result in the same transaction
func (s *SessionStore) Update(ctx context.Context, id uuid.UUID, fn func(*session.Session) error) (*session.Session, error) {
	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			s.logger.Warn("session rollback failed", zap.Error(rErr))
		}
	}()

	var data []byte
	err = tx.QueryRow(ctx,
		`SELECT data FROM sessions WHERE id = $1 AND updated_at > $2 FOR UPDATE`,
		id, s.cutoff(),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}

	sess, err := decodeSession(data)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.ID = id
	sess.UpdatedAt = time.Now().UTC()

	data, err = json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE sessions SET data = $2, updated_at = $3 WHERE id = $1`,
		id, data, sess.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit session: %w", err)
	}
	return sess, nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Sweep deletes expired sessions and returns how many were removed
func (s *SessionStore) Sweep(ctx context.Context) (int64, error) {
	tag, err := s.db.pool.Exec(ctx, `DELETE FROM sessions WHERE updated_at <= $1`, s.cutoff())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		s.logger.Debug("expired sessions removed", zap.Int64("count", n))
	}
	return tag.RowsAffected(), nil
}

// Close stops the sweeper and closes the pool
func (s *SessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.db.Close()
	})
	return nil
}

func (s *SessionStore) cutoff() time.Time {
	return time.Now().UTC().Add(-s.ttl)
}

func decodeSession(data []byte) (*session.Session, error) {
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}
