// Package catalog provides an in-memory board game store used for tests and
// ephemeral deployments.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuihairu/tabletop/internal/ports"
	"github.com/google/uuid"
)

var _ ports.BoardGameStore = (*Store)(nil)

// Store keeps documents in insertion order behind a single mutex.
type Store struct {
	mu    sync.Mutex
	order []string
	games map[string]*ports.BoardGame
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		games: make(map[string]*ports.BoardGame),
		now:   time.Now,
	}
}

func (m *Store) Get(ctx context.Context, id string) (*ports.BoardGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[id]; ok {
		return g.Clone(), nil
	}
	return nil, ports.ErrNotFound
}

func (m *Store) List(ctx context.Context) ([]*ports.BoardGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ports.BoardGame, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.games[id].Clone())
	}
	return out, nil
}

func (m *Store) Query(ctx context.Context, f ports.Filter) ([]*ports.BoardGame, error) {
	var match func(g *ports.BoardGame) bool
	switch {
	case f.Field == ports.FieldBaseGame && f.Op == ports.OpEqual:
		match = func(g *ports.BoardGame) bool { return g.BaseGameID == f.Value }
	case f.Field == ports.FieldExpansions && f.Op == ports.OpArrayContains:
		match = func(g *ports.BoardGame) bool { return g.HasExpansion(f.Value) }
	default:
		return nil, fmt.Errorf("%w: %s %s", ports.ErrUnsupportedQuery, f.Field, f.Op)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ports.BoardGame, 0)
	for _, id := range m.order {
		if g := m.games[id]; match(g) {
			out = append(out, g.Clone())
		}
	}
	return out, nil
}

func (m *Store) Add(ctx context.Context, g *ports.BoardGame) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := g.Clone()
	cp.ID = uuid.NewString()
	now := m.now()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	if cp.Expansions == nil {
		cp.Expansions = []ports.ExpansionRef{}
	}
	m.games[cp.ID] = cp
	m.order = append(m.order, cp.ID)
	return cp.ID, nil
}

// Put creates the document when it does not exist yet, like a document-store set().
func (m *Store) Put(ctx context.Context, g *ports.BoardGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := g.Clone()
	if cp.Expansions == nil {
		cp.Expansions = []ports.ExpansionRef{}
	}
	cp.UpdatedAt = m.now()
	if existing, ok := m.games[g.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.CreatedAt = cp.UpdatedAt
		m.order = append(m.order, cp.ID)
	}
	m.games[cp.ID] = cp
	return nil
}

func (m *Store) PutFields(ctx context.Context, g *ports.BoardGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.games[g.ID]
	if !ok {
		return ports.ErrNotFound
	}
	cp := g.Clone()
	cp.Expansions = existing.Clone().Expansions
	if cp.Expansions == nil {
		cp.Expansions = []ports.ExpansionRef{}
	}
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = m.now()
	m.games[cp.ID] = cp
	return nil
}

func (m *Store) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ports.ErrNotFound
	}
	delete(m.games, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Store) AddExpansion(ctx context.Context, id string, ref ports.ExpansionRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return ports.ErrNotFound
	}
	if g.HasExpansion(ref.ID) {
		return nil
	}
	g.Expansions = append(g.Expansions, ref)
	g.UpdatedAt = m.now()
	return nil
}

func (m *Store) RemoveExpansion(ctx context.Context, id, expansionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return ports.ErrNotFound
	}
	next := make([]ports.ExpansionRef, 0, len(g.Expansions))
	for _, e := range g.Expansions {
		if e.ID != expansionID {
			next = append(next, e)
		}
	}
	g.Expansions = next
	g.UpdatedAt = m.now()
	return nil
}

func (m *Store) SetBaseGame(ctx context.Context, id, baseGameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return ports.ErrNotFound
	}
	g.BaseGameID = baseGameID
	g.UpdatedAt = m.now()
	return nil
}

func (m *Store) Close() error { return nil }
