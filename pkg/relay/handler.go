package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ws "github.com/coder/websocket"

	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/endpoint"
	"github.com/mockbay/mockbay/pkg/identity"
	"github.com/mockbay/mockbay/pkg/traffic"
)

// Handler is the WebSocket upgrade decision point. A `type=logs` query
// parameter selects the log-subscription path; anything else is treated
// as a business session and matched against WebSocket definitions by
// path.
type Handler struct {
	registry *Registry
	store    storage.EndpointStore
	logs     *traffic.Buffer
	log      *slog.Logger
}

// NewHandler creates a Handler over the given registry, store and log
// buffer.
func NewHandler(registry *Registry, store storage.EndpointStore, logs *traffic.Buffer, log *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		store:    store,
		logs:     logs,
		log:      log,
	}
}

// IsUpgradeRequest reports whether the request asks for a WebSocket
// upgrade.
func IsUpgradeRequest(r *http.Request) bool {
	if !headerContainsToken(r.Header, "Connection", "upgrade") {
		return false
	}
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// headerContainsToken checks a comma-separated header for a token,
// case-insensitively.
func headerContainsToken(h http.Header, key, token string) bool {
	for _, v := range h.Values(key) {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}

// ServeHTTP accepts the upgrade and runs the session until its transport
// closes. One goroutine per session; suspension only ever waits on the
// next inbound frame.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("type") == "logs" {
		h.serveSubscriber(w, r)
		return
	}
	h.serveBusiness(w, r)
}

func (h *Handler) serveSubscriber(w http.ResponseWriter, r *http.Request) {
	owner := identity.FromRequest(r)
	if owner == "" {
		owner = identity.Anonymous
	}

	conn, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Debug("log subscriber upgrade failed", "error", err)
		return
	}

	sess := newSession(conn, "", owner, identity.ClientIP(r))
	h.registry.addSubscriber(sess)
	h.log.Debug("log subscriber connected", "owner", owner, "connectionId", sess.ID())

	// Subscribers never send; CloseRead discards inbound frames and
	// resolves when the transport goes away.
	ctx := conn.CloseRead(context.Background())
	<-ctx.Done()

	sess.markClosed()
	h.registry.removeSubscriber(owner, sess.ID())
	h.log.Debug("log subscriber disconnected", "owner", owner, "connectionId", sess.ID())
}

func (h *Handler) serveBusiness(w http.ResponseWriter, r *http.Request) {
	path := endpoint.Normalize(r.URL.Path, endpoint.KindWebSocket)
	clientOwner := identity.FromRequest(r)
	if clientOwner == "" {
		clientOwner = identity.Anonymous
	}

	conn, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Debug("business upgrade failed", "path", path, "error", err)
		return
	}

	def, err := h.store.FindWebSocketByPath(r.Context(), path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = conn.Close(CloseNoMatchingEndpoint, "no matching endpoint")
			return
		}
		h.log.Error("websocket match lookup failed", "path", path, "error", err)
		_ = conn.Close(ws.StatusInternalError, "internal error")
		return
	}

	sess := newSession(conn, def.ID, def.Owner, identity.ClientIP(r))
	h.registry.addBusiness(sess)

	if err := sess.SendJSON(map[string]string{
		"type":         "connected",
		"connectionId": sess.ID(),
		"message":      "connected",
	}); err != nil {
		h.registry.removeBusiness(def.ID, sess.ID())
		_ = conn.Close(ws.StatusInternalError, "internal error")
		return
	}

	h.logs.Append(&traffic.Entry{
		Kind:         traffic.KindWebSocket,
		Action:       traffic.ActionConnect,
		Owner:        def.Owner,
		ClientOwner:  clientOwner,
		EndpointID:   def.ID,
		ConnectionID: sess.ID(),
		IP:           sess.remoteAddr,
		Headers:      r.Header,
		Timestamp:    time.Now(),
	})

	h.readLoop(conn, sess, def.Owner, clientOwner)
}

// readLoop consumes inbound frames until the transport closes, logging
// each message under the definition owner. It performs the single
// removal of the registry entry.
func (h *Handler) readLoop(conn *ws.Conn, sess *Session, owner, clientOwner string) {
	defer func() {
		sess.markClosed()
		h.registry.removeBusiness(sess.EndpointID(), sess.ID())
		h.logs.Append(&traffic.Entry{
			Kind:         traffic.KindWebSocket,
			Action:       traffic.ActionDisconnect,
			Owner:        owner,
			ClientOwner:  clientOwner,
			EndpointID:   sess.EndpointID(),
			ConnectionID: sess.ID(),
			Timestamp:    time.Now(),
		})
		_ = conn.Close(ws.StatusNormalClosure, "")
	}()

	ctx := context.Background()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		h.logs.Append(&traffic.Entry{
			Kind:         traffic.KindWebSocket,
			Action:       traffic.ActionMessage,
			Owner:        owner,
			ClientOwner:  clientOwner,
			EndpointID:   sess.EndpointID(),
			ConnectionID: sess.ID(),
			IP:           sess.remoteAddr,
			Message:      string(data),
			Timestamp:    time.Now(),
		})
	}
}
