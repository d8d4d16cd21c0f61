package server

import (
	"context"
	"sync"
	"time"

	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/practice"
	"github.com/f3rmion/suiwen/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry is one browser session. Its mutex serializes requests against it.
type Entry struct {
	mu       sync.Mutex
	ID       string
	Session  *session.Session
	Practice *practice.Generator
	lastSeen time.Time
}

// Store keeps sessions in memory and evicts those idle longer than the TTL.
type Store struct {
	mu      sync.Mutex
	dict    *dict.Dictionary
	ttl     time.Duration
	now     func() time.Time
	text    string
	entries map[string]*Entry
	log     *zap.Logger
}

// NewStore creates a store. New sessions start with text, or the sample
// text when it is empty.
func NewStore(d *dict.Dictionary, ttl time.Duration, text string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		dict:    d,
		ttl:     ttl,
		now:     time.Now,
		text:    text,
		entries: make(map[string]*Entry),
		log:     log,
	}
}

// Create starts a new session.
func (s *Store) Create() *Entry {
	var opts []session.Option
	if s.text != "" {
		opts = append(opts, session.WithText(s.text))
	}

	e := &Entry{
		ID:       uuid.NewString(),
		Session:  session.New(s.dict, opts...),
		Practice: practice.NewGenerator(s.dict),
	}

	s.mu.Lock()
	e.lastSeen = s.now()
	s.entries[e.ID] = e
	s.mu.Unlock()

	s.log.Debug("session created", zap.String("session_id", e.ID))
	return e
}

// Get returns the session with the given ID and marks it as used.
func (s *Store) Get(id string) (*Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = s.now()
	return e, nil
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.entries, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Evict drops sessions idle since before now minus the TTL and returns how
// many were dropped. A zero TTL keeps sessions forever.
func (s *Store) Evict(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Run evicts idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Evict(s.now()); n > 0 {
				s.log.Info("evicted idle sessions", zap.Int("count", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}
