// internal/store/memory.go
//
// In-memory implementation of the session Store interface.
// This is a lightweight registry for ephemeral game sessions; everything is
// lost on process restart, which matches the single-session lifetime of a
// game (persistence across sessions is explicitly out of scope).
//
// Characteristics:
//   - Stores *Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex. The mutex guards the map only: each
//     Session is driven by exactly one logical caller at a time, so the
//     session contents need no locking of their own.
//   - Errors are returned for missing session IDs on Get/Delete.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cowculator/cowculator/internal/game"
	"github.com/cowculator/cowculator/internal/solver"
)

// ErrNotFound is returned when no session exists for an ID.
var ErrNotFound = errors.New("session not found")

// Session bundles everything owned by one game: the engine, the optional
// hint solver, and the entropy log the solver feeds.
type Session struct {
	ID        string
	Engine    *game.Engine
	Solver    *solver.Solver // nil when the rule space is too large for hints
	Entropies []float64      // entropy before play, then after each guess
	CreatedAt time.Time
}

// Store defines the registry interface for game sessions.
// Implementations may be backed by memory (this package) or anything else.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session; the game it held is over.
	Delete(ctx context.Context, id string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}
