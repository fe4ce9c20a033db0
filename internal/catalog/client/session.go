package client

import (
	"context"
	"sync"
	"time"

	"github.com/cuihairu/tabletop/internal/catalog/view"
	"github.com/cuihairu/tabletop/internal/ports"
)

// API is the subset of the catalog API a Session needs. *Client implements it.
type API interface {
	List(ctx context.Context) ([]*ports.BoardGame, error)
	Create(ctx context.Context, g *ports.BoardGame) (string, error)
	Update(ctx context.Context, g *ports.BoardGame) error
	Delete(ctx context.Context, id string) error
}

var _ API = (*Client)(nil)

// Session owns a view.State and applies server effects to it. Every mutation
// is followed by a full re-fetch; the cached list is never patched locally.
type Session struct {
	mu     sync.Mutex
	api    API
	state  view.State
	loaded bool
}

func NewSession(api API) *Session {
	return &Session{api: api, state: view.NewState(time.Now().Year())}
}

// State returns a snapshot of the current state.
func (s *Session) State() view.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a local action and returns the resulting state.
func (s *Session) Dispatch(a view.Action) view.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = view.Reduce(s.state, a)
	return s.state
}

// Init loads the list the first time it is called and is a no-op afterwards.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return nil
	}
	s.loaded = true
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// Refresh re-fetches the full list.
func (s *Session) Refresh(ctx context.Context) error {
	s.Dispatch(view.FetchPending{})
	records, err := s.api.List(ctx)
	if err != nil {
		s.Dispatch(view.FetchRejected{Err: err})
		return err
	}
	s.Dispatch(view.FetchFulfilled{Records: records})
	return nil
}

// Create submits the record being edited as a new record.
func (s *Session) Create(ctx context.Context) error {
	current := s.State().Current
	return s.mutate(ctx, view.MutationCreate, func(ctx context.Context) error {
		_, err := s.api.Create(ctx, &current)
		return err
	})
}

// Update submits the record being edited as a replacement.
func (s *Session) Update(ctx context.Context) error {
	current := s.State().Current
	return s.mutate(ctx, view.MutationUpdate, func(ctx context.Context) error {
		return s.api.Update(ctx, &current)
	})
}

func (s *Session) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, view.MutationDelete, func(ctx context.Context) error {
		return s.api.Delete(ctx, id)
	})
}

// mutate runs op and then re-fetches the list whether or not op succeeded,
// since a partially applied mutation still changed the server. An op error
// leaves the state Failed on top of the fresh list.
func (s *Session) mutate(ctx context.Context, op view.Mutation, fn func(context.Context) error) error {
	s.Dispatch(view.FetchPending{})
	opErr := fn(ctx)
	records, err := s.api.List(ctx)
	switch {
	case err != nil:
		if opErr != nil {
			err = opErr
		}
		s.Dispatch(view.FetchRejected{Err: err})
		return err
	case opErr != nil:
		s.Dispatch(view.FetchFulfilled{Records: records})
		s.Dispatch(view.FetchRejected{Err: opErr})
		return opErr
	}
	s.Dispatch(view.MutationFulfilled{Op: op, Records: records})
	return nil
}
