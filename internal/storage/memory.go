package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/mockbay/mockbay/pkg/endpoint"
)

// InMemoryEndpointStore is a thread-safe in-memory implementation of
// EndpointStore. It is the default backend when no MongoDB URI is
// configured, and the backend used by tests.
type InMemoryEndpointStore struct {
	mu   sync.RWMutex
	defs map[string]*endpoint.Definition
}

// NewInMemoryEndpointStore creates an empty InMemoryEndpointStore.
func NewInMemoryEndpointStore() *InMemoryEndpointStore {
	return &InMemoryEndpointStore{
		defs: make(map[string]*endpoint.Definition),
	}
}

// FindByID retrieves a definition by ID.
func (s *InMemoryEndpointStore) FindByID(_ context.Context, id string) (*endpoint.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.defs[id]; ok {
		return cloneDef(d), nil
	}
	return nil, ErrNotFound
}

// FindByPathMethod retrieves the definition occupying (path, method).
func (s *InMemoryEndpointStore) FindByPathMethod(_ context.Context, path, method string) (*endpoint.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.defs {
		if d.Path == path && d.Method == method {
			return cloneDef(d), nil
		}
	}
	return nil, ErrNotFound
}

// FindWebSocketByPath retrieves a WebSocket-only definition by path.
func (s *InMemoryEndpointStore) FindWebSocketByPath(_ context.Context, path string) (*endpoint.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.defs {
		if d.IsWebSocket && d.Path == path {
			return cloneDef(d), nil
		}
	}
	return nil, ErrNotFound
}

// ListByOwner returns all definitions created by owner, newest first.
func (s *InMemoryEndpointStore) ListByOwner(_ context.Context, owner string) ([]*endpoint.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*endpoint.Definition, 0)
	for _, d := range s.defs {
		if d.Owner == owner {
			result = append(result, cloneDef(d))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Insert stores a new definition.
func (s *InMemoryEndpointStore) Insert(_ context.Context, def *endpoint.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[def.ID] = cloneDef(def)
	return nil
}

// Update replaces the definition with the given ID.
func (s *InMemoryEndpointStore) Update(_ context.Context, def *endpoint.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.defs[def.ID]; !ok {
		return ErrNotFound
	}
	s.defs[def.ID] = cloneDef(def)
	return nil
}

// Delete removes a definition by ID.
func (s *InMemoryEndpointStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.defs[id]; !ok {
		return ErrNotFound
	}
	delete(s.defs, id)
	return nil
}

// cloneDef copies a definition so callers never share mutable state with
// the store.
func cloneDef(d *endpoint.Definition) *endpoint.Definition {
	c := *d
	return &c
}

// Ensure InMemoryEndpointStore implements EndpointStore.
var _ EndpointStore = (*InMemoryEndpointStore)(nil)
