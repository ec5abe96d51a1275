package relay

import (
	"errors"

	ws "github.com/coder/websocket"
)

// Common errors for the relay package.
var (
	// ErrConnectionClosed indicates the session transport is closed.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrConnectionNotFound indicates the directed target is absent or closed.
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrNoConnections indicates the endpoint has no live sessions at all.
	ErrNoConnections = errors.New("no connections for endpoint")
)

// CloseNoMatchingEndpoint is the close status sent when an upgrade path
// matches no WebSocket definition. It sits in the application range so
// clients can distinguish it from transport failures.
const CloseNoMatchingEndpoint ws.StatusCode = 4004
