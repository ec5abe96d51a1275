package traffic

import "time"

// Entry kinds.
const (
	KindHTTP      = "http"
	KindWebSocket = "websocket"
)

// WebSocket actions.
const (
	ActionConnect    = "connect"
	ActionMessage    = "message"
	ActionDisconnect = "disconnect"
)

// Entry captures one dispatch outcome: an HTTP request against the /test/
// namespace or a WebSocket lifecycle event. Entries belong to an owner;
// matched traffic is owned by the definition creator so creators see hits
// against their endpoints even when visited anonymously.
type Entry struct {
	// Kind is "http" or "websocket".
	Kind string `json:"type"`

	// Owner is the visitor id the entry is logged under. Empty owners are
	// retained in the buffer but never broadcast.
	Owner string `json:"userId,omitempty"`

	// ClientOwner is the visitor id of the party that caused the entry,
	// when it differs from Owner (e.g. anonymous traffic against a mock).
	ClientOwner string `json:"clientUserId,omitempty"`

	// Matched reports whether the request found a definition (HTTP only).
	Matched bool `json:"matched,omitempty"`

	// Method and Path describe the HTTP request (HTTP only).
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`

	// EndpointID is the matched definition id, if any.
	EndpointID string `json:"endpointId,omitempty"`

	// ConnectionID identifies the WebSocket session (websocket only).
	ConnectionID string `json:"connectionId,omitempty"`

	// Action is connect, message or disconnect (websocket only).
	Action string `json:"action,omitempty"`

	// IP is the client address, X-Forwarded-For aware.
	IP string `json:"ip,omitempty"`

	// Headers and Query capture the request surface (HTTP only).
	Headers map[string][]string `json:"headers,omitempty"`
	Query   map[string][]string `json:"query,omitempty"`

	// Body is the request body (HTTP only, may be truncated).
	Body string `json:"body,omitempty"`

	// Message is the inbound WebSocket message content (websocket only).
	Message string `json:"message,omitempty"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`
}
