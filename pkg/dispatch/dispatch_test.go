package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/endpoint"
	"github.com/mockbay/mockbay/pkg/identity"
	"github.com/mockbay/mockbay/pkg/traffic"
)

func newTestHandler(t *testing.T, defs ...*endpoint.Definition) (*Handler, *traffic.Buffer) {
	t.Helper()
	store := storage.NewInMemoryEndpointStore()
	for _, d := range defs {
		if err := store.Insert(context.Background(), d); err != nil {
			t.Fatalf("insert definition: %v", err)
		}
	}
	logs := traffic.NewBuffer(traffic.DefaultCapacity)
	h := NewHandler(store, logs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h, logs
}

func visitorRequest(method, target, visitor string, body io.Reader) *http.Request {
	r := httptest.NewRequest(method, target, body)
	return r.WithContext(identity.WithVisitor(r.Context(), visitor))
}

func TestDecide(t *testing.T) {
	store := storage.NewInMemoryEndpointStore()
	httpDef := &endpoint.Definition{
		ID: "d1", Owner: "alice", Path: "/test/widgets", Method: "GET",
		Response: `{"ok":true}`, StatusCode: 200, ContentType: "application/json",
		CreatedAt: time.Now(),
	}
	sseDef := &endpoint.Definition{
		ID: "d2", Owner: "alice", Path: "/test/stream", Method: "GET",
		Response: "a\nb", StatusCode: 200, ContentType: "text/event-stream",
		CreatedAt: time.Now(),
	}
	wsDef := &endpoint.Definition{
		ID: "d3", Owner: "bob", Path: "/testws/echo", Method: "GET",
		IsWebSocket: true, CreatedAt: time.Now(),
	}
	for _, d := range []*endpoint.Definition{httpDef, sseDef, wsDef} {
		if err := store.Insert(context.Background(), d); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	tests := []struct {
		name   string
		method string
		path   string
		want   DecisionKind
	}{
		{"buffered match", "GET", "/test/widgets", DecisionBuffered},
		{"sse match", "GET", "/test/stream", DecisionSSE},
		{"websocket definition over http", "GET", "/testws/echo", DecisionWebSocketOnly},
		{"method mismatch", "POST", "/test/widgets", DecisionNotFound},
		{"unknown path", "GET", "/test/nothing", DecisionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decide(context.Background(), store, tt.method, tt.path)
			if err != nil {
				t.Fatalf("Decide() error = %v", err)
			}
			if d.Kind != tt.want {
				t.Errorf("Decide() kind = %v, want %v", d.Kind, tt.want)
			}
			if tt.want == DecisionNotFound && d.Definition != nil {
				t.Errorf("not-found decision carries a definition")
			}
		})
	}
}

func TestHandlerBuffered(t *testing.T) {
	def := &endpoint.Definition{
		ID: "d1", Owner: "alice", Path: "/test/widgets", Method: "GET",
		Response: `{"ok":true}`, StatusCode: 201, ContentType: "application/json",
		CreatedAt: time.Now(),
	}
	h, logs := newTestHandler(t, def)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, visitorRequest("GET", "/test/widgets?q=1", "visitor-1", nil))

	if w.Code != 201 {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q", got)
	}
	if got := w.Body.String(); got != `{"ok":true}` {
		t.Errorf("body = %q", got)
	}

	entries := logs.ListForOwner("alice")
	if len(entries) != 1 {
		t.Fatalf("owner entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if !e.Matched || e.EndpointID != "d1" {
		t.Errorf("entry matched=%v endpointId=%q", e.Matched, e.EndpointID)
	}
	if e.ClientOwner != "visitor-1" {
		t.Errorf("clientUserId = %q, want visitor-1", e.ClientOwner)
	}
	if q := e.Query["q"]; len(q) != 1 || q[0] != "1" {
		t.Errorf("query not captured: %v", e.Query)
	}
	// Matched traffic belongs to the owner, not the visitor.
	if got := logs.ListForOwner("visitor-1"); len(got) != 0 {
		t.Errorf("visitor entries = %d, want 0", len(got))
	}
}

func TestHandlerNotFound(t *testing.T) {
	h, logs := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, visitorRequest("GET", "/test/missing", "visitor-1", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "" || body["path"] != "/test/missing" {
		t.Errorf("body = %v", body)
	}

	entries := logs.ListForOwner("visitor-1")
	if len(entries) != 1 {
		t.Fatalf("visitor entries = %d, want 1", len(entries))
	}
	if entries[0].Matched {
		t.Errorf("unmatched entry flagged matched")
	}
}

func TestHandlerWebSocketOnly(t *testing.T) {
	def := &endpoint.Definition{
		ID: "d1", Owner: "alice", Path: "/testws/echo", Method: "GET",
		IsWebSocket: true, CreatedAt: time.Now(),
	}
	h, logs := newTestHandler(t, def)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, visitorRequest("GET", "/testws/echo", "visitor-1", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if entries := logs.ListForOwner("alice"); len(entries) != 1 {
		t.Fatalf("owner entries = %d, want 1", len(entries))
	}
}

func TestHandlerOptionsNoLog(t *testing.T) {
	def := &endpoint.Definition{
		ID: "d1", Owner: "alice", Path: "/test/widgets", Method: "GET",
		Response: "ok", StatusCode: 200, ContentType: "text/plain",
		CreatedAt: time.Now(),
	}
	h, logs := newTestHandler(t, def)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, visitorRequest("OPTIONS", "/test/widgets", "visitor-1", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if logs.Len() != 0 {
		t.Errorf("preflight produced %d entries, want 0", logs.Len())
	}
}

func TestHandlerSSE(t *testing.T) {
	def := &endpoint.Definition{
		ID: "d1", Owner: "alice", Path: "/test/stream", Method: "GET",
		Response: "first\nsecond", StatusCode: 200, ContentType: "text/event-stream",
		CreatedAt: time.Now(),
	}
	h, logs := newTestHandler(t, def)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, visitorRequest("GET", "/test/stream", "visitor-1", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("content type = %q", got)
	}
	body := w.Body.String()
	if body != "first\n\nsecond\n\n" {
		t.Errorf("stream body = %q", body)
	}
	if entries := logs.ListForOwner("alice"); len(entries) != 1 {
		t.Errorf("owner entries = %d, want 1", len(entries))
	}
}

func TestHandlerBodyCapture(t *testing.T) {
	def := &endpoint.Definition{
		ID: "d1", Owner: "alice", Path: "/test/ingest", Method: "POST",
		Response: "ok", StatusCode: 200, ContentType: "text/plain",
		CreatedAt: time.Now(),
	}
	h, logs := newTestHandler(t, def)

	payload := strings.Repeat("x", maxCapturedBody+1000)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, visitorRequest("POST", "/test/ingest", "visitor-1", strings.NewReader(payload)))

	entries := logs.ListForOwner("alice")
	if len(entries) != 1 {
		t.Fatalf("owner entries = %d, want 1", len(entries))
	}
	if got := len(entries[0].Body); got != maxCapturedBody {
		t.Errorf("captured body = %d bytes, want %d", got, maxCapturedBody)
	}
}

func TestHandlerOneEntryPerRequest(t *testing.T) {
	def := &endpoint.Definition{
		ID: "d1", Owner: "alice", Path: "/test/widgets", Method: "GET",
		Response: "ok", StatusCode: 200, ContentType: "text/plain",
		CreatedAt: time.Now(),
	}
	h, logs := newTestHandler(t, def)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, visitorRequest("GET", "/test/widgets", "visitor-1", nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), visitorRequest("GET", "/test/other", "visitor-1", nil))

	if logs.Len() != 4 {
		t.Errorf("total entries = %d, want 4", logs.Len())
	}
}
