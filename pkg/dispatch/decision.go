package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/endpoint"
)

// DecisionKind is the emission mode selected for a request.
type DecisionKind int

const (
	// DecisionNotFound means no definition occupies (path, method).
	DecisionNotFound DecisionKind = iota
	// DecisionWebSocketOnly means the match exists but only speaks WebSocket.
	DecisionWebSocketOnly
	// DecisionBuffered means one write with the stored body, status and
	// content type.
	DecisionBuffered
	// DecisionSSE means the stored body is streamed as paced events.
	DecisionSSE
)

// String returns the decision name.
func (k DecisionKind) String() string {
	switch k {
	case DecisionNotFound:
		return "not-found"
	case DecisionWebSocketOnly:
		return "websocket-only"
	case DecisionBuffered:
		return "buffered"
	case DecisionSSE:
		return "sse"
	default:
		return "unknown"
	}
}

// Decision is the resolved emission mode plus the matched definition
// (nil for NotFound). It is produced once per request and consumed once
// by the transport layer.
type Decision struct {
	Kind       DecisionKind
	Definition *endpoint.Definition
}

// Decide looks up the definition occupying (canonicalPath, method) and
// selects the emission mode. The match is exact and method-sensitive,
// and deliberately crosses owners: mock paths are a shared namespace.
func Decide(ctx context.Context, store storage.EndpointStore, method, canonicalPath string) (Decision, error) {
	def, err := store.FindByPathMethod(ctx, canonicalPath, method)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Decision{Kind: DecisionNotFound}, nil
		}
		return Decision{}, fmt.Errorf("dispatch lookup: %w", err)
	}

	switch {
	case def.IsWebSocket:
		return Decision{Kind: DecisionWebSocketOnly, Definition: def}, nil
	case def.IsSSE():
		return Decision{Kind: DecisionSSE, Definition: def}, nil
	default:
		return Decision{Kind: DecisionBuffered, Definition: def}, nil
	}
}
