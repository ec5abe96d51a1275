package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/endpoint"
)

// ErrConflict indicates another definition already occupies the
// requested (path, method) pair. The pair is globally unique across all
// owners.
var ErrConflict = errors.New("path and method already registered")

// ErrNotFound indicates the definition does not exist or belongs to a
// different owner. Ownership mismatches are deliberately reported as
// not-found so ids leak nothing about other visitors' endpoints.
var ErrNotFound = storage.ErrNotFound

// Params carries the caller-supplied fields for a new definition.
type Params struct {
	Path               string  `json:"path"`
	Method             string  `json:"method"`
	Response           string  `json:"response"`
	StatusCode         int     `json:"statusCode"`
	ContentType        string  `json:"contentType"`
	SSEDurationSeconds float64 `json:"sseDurationSeconds"`
	IsWebSocket        bool    `json:"isWebSocket"`
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Path               *string  `json:"path"`
	Method             *string  `json:"method"`
	Response           *string  `json:"response"`
	StatusCode         *int     `json:"statusCode"`
	ContentType        *string  `json:"contentType"`
	SSEDurationSeconds *float64 `json:"sseDurationSeconds"`
	IsWebSocket        *bool    `json:"isWebSocket"`
}

// Service is the definition management facade used by the admin API.
type Service struct {
	store storage.EndpointStore
	now   func() time.Time
	newID func() string
}

// NewService creates a Service over the given store.
func NewService(store storage.EndpointStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// List returns the owner's definitions, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]*endpoint.Definition, error) {
	defs, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	return defs, nil
}

// Get returns the definition if it exists and belongs to owner.
func (s *Service) Get(ctx context.Context, id, owner string) (*endpoint.Definition, error) {
	def, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if def.Owner != owner {
		return nil, ErrNotFound
	}
	return def, nil
}

// Create validates and stores a new definition for owner. The path is
// canonicalized into the namespace implied by the WebSocket flag before
// validation and the conflict check.
func (s *Service) Create(ctx context.Context, owner string, params Params) (*endpoint.Definition, error) {
	def := &endpoint.Definition{
		ID:                 s.newID(),
		Owner:              owner,
		Path:               params.Path,
		Method:             params.Method,
		Response:           params.Response,
		StatusCode:         params.StatusCode,
		ContentType:        params.ContentType,
		SSEDurationSeconds: params.SSEDurationSeconds,
		IsWebSocket:        params.IsWebSocket,
		CreatedAt:          s.now(),
	}
	def.Path = endpoint.Normalize(def.Path, def.Kind())
	def.ApplyDefaults()
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkConflict(ctx, def, ""); err != nil {
		return nil, err
	}
	if err := s.store.Insert(ctx, def); err != nil {
		return nil, fmt.Errorf("insert definition: %w", err)
	}
	return def, nil
}

// Update applies a partial update to the owner's definition. Changing
// the path, method or WebSocket flag re-normalizes the path and re-runs
// the conflict check with the definition itself excluded.
func (s *Service) Update(ctx context.Context, id, owner string, patch Patch) (*endpoint.Definition, error) {
	def, err := s.Get(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	renormalize := false
	if patch.Path != nil {
		def.Path = *patch.Path
		renormalize = true
	}
	if patch.Method != nil {
		def.Method = *patch.Method
	}
	if patch.IsWebSocket != nil && *patch.IsWebSocket != def.IsWebSocket {
		def.IsWebSocket = *patch.IsWebSocket
		renormalize = true
	}
	if patch.Response != nil {
		def.Response = *patch.Response
	}
	if patch.StatusCode != nil {
		def.StatusCode = *patch.StatusCode
	}
	if patch.ContentType != nil {
		def.ContentType = *patch.ContentType
	}
	if patch.SSEDurationSeconds != nil {
		def.SSEDurationSeconds = *patch.SSEDurationSeconds
	}

	if renormalize {
		def.Path = endpoint.Normalize(def.Path, def.Kind())
	}
	def.SSEDurationSeconds = endpoint.ClampSSEDuration(def.ContentType, def.SSEDurationSeconds)
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkConflict(ctx, def, def.ID); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, def); err != nil {
		return nil, fmt.Errorf("update definition: %w", err)
	}
	return def, nil
}

// Delete removes the owner's definition. Live WebSocket sessions opened
// against it are left to drain on their own close.
func (s *Service) Delete(ctx context.Context, id, owner string) error {
	if _, err := s.Get(ctx, id, owner); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete definition: %w", err)
	}
	return nil
}

// checkConflict reports ErrConflict when a different definition already
// occupies def's (path, method) pair. excludeID skips the definition
// being updated.
func (s *Service) checkConflict(ctx context.Context, def *endpoint.Definition, excludeID string) error {
	existing, err := s.store.FindByPathMethod(ctx, def.Path, def.Method)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("conflict check: %w", err)
	}
	if existing.ID == excludeID {
		return nil
	}
	return ErrConflict
}
