package relay

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	ws "github.com/coder/websocket"
	"github.com/google/uuid"
)

// writeTimeout bounds a single outbound send so one stalled client can
// never wedge a broadcast.
const writeTimeout = 5 * time.Second

// transport is the slice of *websocket.Conn the session needs. Narrowed
// to an interface so registry behavior is testable without sockets.
type transport interface {
	Write(ctx context.Context, typ ws.MessageType, p []byte) error
	Close(code ws.StatusCode, reason string) error
}

// Session is one live WebSocket connection, either a business session
// bound to an endpoint definition or a log subscriber bound to an owner.
type Session struct {
	id         string
	endpointID string
	owner      string
	remoteAddr string
	conn       transport
	openedAt   time.Time
	closed     atomic.Bool
}

// newSession wraps a transport with a generated connection id.
func newSession(conn transport, endpointID, owner, remoteAddr string) *Session {
	return &Session{
		id:         uuid.NewString(),
		endpointID: endpointID,
		owner:      owner,
		remoteAddr: remoteAddr,
		conn:       conn,
		openedAt:   time.Now(),
	}
}

// ID returns the generated connection id.
func (s *Session) ID() string { return s.id }

// EndpointID returns the matched definition id (business sessions only).
func (s *Session) EndpointID() string { return s.endpointID }

// Owner returns the owner identity (subscribers only).
func (s *Session) Owner() string { return s.owner }

// IsOpen reports whether the session can still be written to.
func (s *Session) IsOpen() bool { return !s.closed.Load() }

// SendText writes a text frame, failing fast if the session is closed.
// A write error marks the session closed so later broadcasts skip it;
// the registry entry itself is removed when the read loop observes the
// close.
func (s *Session) SendText(payload string) error {
	if s.closed.Load() {
		return ErrConnectionClosed
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.conn.Write(ctx, ws.MessageText, []byte(payload)); err != nil {
		s.closed.Store(true)
		return err
	}
	return nil
}

// SendJSON marshals v and sends it as a text frame.
func (s *Session) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.SendText(string(data))
}

// markClosed flags the session as unwritable. Idempotent.
func (s *Session) markClosed() {
	s.closed.Store(true)
}
