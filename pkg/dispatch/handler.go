package dispatch

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/endpoint"
	"github.com/mockbay/mockbay/pkg/httputil"
	"github.com/mockbay/mockbay/pkg/identity"
	"github.com/mockbay/mockbay/pkg/sse"
	"github.com/mockbay/mockbay/pkg/traffic"
)

// maxCapturedBody bounds how much of a request body lands in the traffic
// log.
const maxCapturedBody = 10 * 1024

// Handler serves the /test/ namespace.
type Handler struct {
	store storage.EndpointStore
	logs  *traffic.Buffer
	log   *slog.Logger
}

// NewHandler creates a dispatch Handler.
func NewHandler(store storage.EndpointStore, logs *traffic.Buffer, log *slog.Logger) *Handler {
	return &Handler{store: store, logs: logs, log: log}
}

// ServeHTTP dispatches one request. OPTIONS preflights are short-circuited
// before matching and produce no traffic entry; every other request
// appends exactly one.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// Plain HTTP requests against the WebSocket namespace still resolve,
	// so a matched WebSocket-only definition can answer with a 400
	// instead of disappearing into a 404.
	kind := endpoint.KindHTTP
	if strings.HasPrefix(r.URL.Path, endpoint.KindWebSocket.Prefix()) {
		kind = endpoint.KindWebSocket
	}
	path := endpoint.Normalize(r.URL.Path, kind)
	body, _ := io.ReadAll(io.LimitReader(r.Body, maxCapturedBody))

	decision, err := Decide(r.Context(), h.store, r.Method, path)
	if err != nil {
		h.log.Error("dispatch failed", "method", r.Method, "path", path, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal_error", "dispatch failed")
		return
	}

	entry := &traffic.Entry{
		Kind:        traffic.KindHTTP,
		Method:      r.Method,
		Path:        path,
		IP:          identity.ClientIP(r),
		Headers:     r.Header,
		Query:       r.URL.Query(),
		Body:        string(body),
		ClientOwner: identity.Visitor(r.Context()),
		Timestamp:   time.Now(),
	}

	if decision.Kind == DecisionNotFound {
		// Unmatched traffic belongs to whoever sent it.
		entry.Owner = identity.Visitor(r.Context())
		h.logs.Append(entry)
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error": "endpoint not found",
			"path":  path,
		})
		return
	}

	// Matched traffic belongs to the definition owner so creators see
	// hits against their mock even when visited anonymously.
	def := decision.Definition
	entry.Matched = true
	entry.Owner = def.Owner
	entry.EndpointID = def.ID
	h.logs.Append(entry)

	switch decision.Kind {
	case DecisionWebSocketOnly:
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "endpoint is WebSocket-only, connect over ws",
			"path":  path,
		})

	case DecisionSSE:
		h.serveSSE(w, r, def)

	default:
		w.Header().Set("Content-Type", def.ContentType)
		w.WriteHeader(def.StatusCode)
		_, _ = io.WriteString(w, def.Response)
	}
}

// serveSSE hands the request off to a paced stream. The stream observes
// client disconnects through the request context.
func (h *Handler) serveSSE(w http.ResponseWriter, r *http.Request, def *endpoint.Definition) {
	events := sse.SplitEvents(def.Response)
	duration := time.Duration(def.SSEDurationSeconds * float64(time.Second))

	sse.WriteStreamHeaders(w, def.StatusCode)

	stream := sse.NewStream(events, duration)
	if err := stream.Run(r.Context(), w); err != nil {
		h.log.Debug("sse stream ended early", "path", def.Path, "error", err)
	}
}
