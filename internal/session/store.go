// Package session keeps the dataset and chart configuration of each
// upload in memory until it goes idle.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
	"go.uber.org/zap"
)

// ErrNotFound is returned for an unknown or expired session id.
var ErrNotFound = errors.New("session not found")

// Session is a snapshot of one upload's state.
type Session struct {
	ID      string              `json:"id"`
	Dataset *models.Dataset     `json:"dataset"`
	Chart   *models.ChartConfig `json:"chart"`
	// CreatedAt is when the session was created.
	CreatedAt time.Time `json:"created_at"`
	// LastUsed is refreshed by every read or write.
	LastUsed time.Time `json:"last_used"`
}

func (s *Session) snapshot() *Session {
	out := *s
	out.Chart = s.Chart.Clone()
	return &out
}

// Store is an in-memory session store safe for concurrent use.
// Datasets are treated as immutable once stored; chart configurations are
// copied in and out.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewStore creates a store whose sessions expire after ttl without use.
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Create stores a new session and returns its snapshot. cfg may be nil
// when the dataset has no chartable column.
func (s *Store) Create(ds *models.Dataset, cfg *models.ChartConfig) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Dataset:   ds,
		Chart:     cfg.Clone(),
		CreatedAt: now,
		LastUsed:  now,
	}
	s.sessions[sess.ID] = sess
	s.logger.Debug("session created", zap.String("session", sess.ID))
	return sess.snapshot()
}

// Get returns a snapshot of the session.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.LastUsed = s.now()
	return sess.snapshot(), nil
}

// Delete removes the session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	s.logger.Debug("session deleted", zap.String("session", id))
	return nil
}

// Replace swaps the dataset and configuration of a session wholesale,
// as happens when a new file is uploaded into it.
func (s *Store) Replace(id string, ds *models.Dataset, cfg *models.ChartConfig) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.Dataset = ds
	sess.Chart = cfg.Clone()
	sess.LastUsed = s.now()
	return sess.snapshot(), nil
}

// EditFunc derives a new configuration from the session's dataset and
// current configuration. It must not modify its arguments.
type EditFunc func(ds *models.Dataset, cfg *models.ChartConfig) (*models.ChartConfig, error)

// Update applies fn to the session and stores its result in place of the
// old configuration. Updates are serialized; a failed edit leaves the
// session unchanged.
func (s *Store) Update(id string, fn EditFunc) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	next, err := fn(sess.Dataset, sess.Chart.Clone())
	if err != nil {
		return nil, err
	}
	sess.Chart = next.Clone()
	sess.LastUsed = s.now()
	return sess.snapshot(), nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL as of now and
// returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastUsed) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval. Blocks until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	s.logger.Info("session sweeper started", zap.Duration("interval", interval), zap.Duration("ttl", s.ttl))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.logger.Info("expired sessions removed", zap.Int("removed", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}
