package storage

import (
	"context"
	"errors"

	"github.com/mockbay/mockbay/pkg/endpoint"
)

// ErrNotFound indicates the requested definition does not exist.
var ErrNotFound = errors.New("definition not found")

// EndpointStore defines the interface for storing and retrieving endpoint
// definitions. Lookups that find nothing return ErrNotFound; callers decide
// whether that is an error or an expected miss.
type EndpointStore interface {
	// FindByID retrieves a definition by ID.
	FindByID(ctx context.Context, id string) (*endpoint.Definition, error)

	// FindByPathMethod retrieves the definition occupying the globally
	// unique (path, method) pair.
	FindByPathMethod(ctx context.Context, path, method string) (*endpoint.Definition, error)

	// FindWebSocketByPath retrieves a WebSocket-only definition by path,
	// ignoring the method.
	FindWebSocketByPath(ctx context.Context, path string) (*endpoint.Definition, error)

	// ListByOwner returns all definitions created by owner, newest first.
	ListByOwner(ctx context.Context, owner string) ([]*endpoint.Definition, error)

	// Insert stores a new definition.
	Insert(ctx context.Context, def *endpoint.Definition) error

	// Update replaces the definition with the given ID.
	Update(ctx context.Context, def *endpoint.Definition) error

	// Delete removes a definition by ID.
	Delete(ctx context.Context, id string) error
}
