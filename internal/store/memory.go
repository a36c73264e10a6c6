// internal/store/memory.go
//
// In-memory implementation of Store.
// Used for ephemeral sessions, in development/testing, or whenever games
// need not survive a restart.
//
// Characteristics:
//   - Sessions are kept by ID in a map guarded by an RWMutex.
//   - Each entry has its own mutex; Update/View hold it for the duration of fn,
//     so two requests for the same game never interleave.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robalobadob/wordly/internal/game"
)

type entry struct {
	mu      sync.Mutex
	s       *game.Session
	touched atomic.Int64 // unix nanos of the last Create/Update
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex      // guards sessions map
	sessions map[string]*entry // keyed by game ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*entry)}
}

func (m *memory) Create(ctx context.Context, s *game.Session) (string, error) {
	id := NewID()
	e := &entry{s: s}
	e.touched.Store(time.Now().UnixNano())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = e
	return id, nil
}

func (m *memory) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Session) error) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(e.s); err != nil {
		return err
	}
	e.touched.Store(time.Now().UnixNano())
	return nil
}

func (m *memory) View(ctx context.Context, id string, fn func(*game.Session) error) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.s)
}

// Prune drops sessions not updated since before.
func (m *memory) Prune(ctx context.Context, before time.Time) (int64, error) {
	cut := before.UnixNano()
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.sessions {
		if e.touched.Load() < cut {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memory) Close() error { return nil }
