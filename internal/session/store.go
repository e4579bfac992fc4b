package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/mines"
)

// Store keeps live sessions in memory. Finished or abandoned sessions are
// dropped by [Store.Sweep].
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      *logrus.Entry
	now      func() time.Time
}

type StoreOption func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(log *logrus.Entry, opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session. Each game gets its own random source unless
// opts say otherwise.
func (s *Store) Create(
	params mines.GameParams, playerID *int64, opts ...mines.Option,
) (*Session, error) {
	opts = append([]mines.Option{mines.WithRand(mines.NewRand())}, opts...)
	session, err := newSession(params, playerID, s.now, s.log, opts...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"session": session.ID,
		"seed":    params.Seed(),
	}).Debug("session created")
	return session, nil
}

func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
func (s *Store) Sweep(ttl time.Duration) int {
	deadline := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, session := range s.sessions {
		if session.idleSince().Before(deadline) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.log.WithFields(logrus.Fields{
			"swept": n, "live": len(s.sessions),
		}).Info("sessions swept")
	}
	return n
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(ttl)
		}
	}
}
