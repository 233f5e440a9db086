// Package session keeps recent batch runs in memory so results can be
// reviewed and downloaded after the upload request returns.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"churnflow/internal/domain"
)

// Config holds store limits.
type Config struct {
	TTL        time.Duration
	MaxEntries int
}

type entry struct {
	run       *domain.BatchRun
	expiresAt time.Time
}

// Store is an in-memory port.BatchStore. Entries expire after TTL and the
// oldest entry is evicted once MaxEntries is reached. Contents are lost on
// restart.
type Store struct {
	mu      sync.Mutex
	entries map[uuid.UUID]entry
	order   []uuid.UUID // insertion order, oldest first
	cfg     Config
	now     func() time.Time
}

// NewStore creates a Store.
func NewStore(cfg Config) *Store {
	return NewStoreWithClock(cfg, time.Now)
}

// NewStoreWithClock creates a Store with an injectable clock (for testing).
func NewStoreWithClock(cfg Config, now func() time.Time) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 100
	}
	return &Store{
		entries: make(map[uuid.UUID]entry),
		cfg:     cfg,
		now:     now,
	}
}

// Put stores run, evicting the oldest entries if the store is full.
func (s *Store) Put(run *domain.BatchRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[run.ID]; !exists {
		s.order = append(s.order, run.ID)
	}
	s.entries[run.ID] = entry{run: run, expiresAt: s.now().Add(s.cfg.TTL)}

	for len(s.entries) > s.cfg.MaxEntries && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
		slog.Debug("session.Store: evicted batch", "batch_id", oldest)
	}
}

// Get returns the run stored under id, or domain.ErrBatchNotFound if it is
// unknown or expired.
func (s *Store) Get(id uuid.UUID) (*domain.BatchRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, domain.ErrBatchNotFound
	}
	return e.run, nil
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		e, ok := s.entries[id]
		if !ok {
			continue
		}
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed
}
