package relay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/mockbay/mockbay/pkg/traffic"
)

// ConnectionInfo describes one live business session for API listings.
type ConnectionInfo struct {
	ID       string    `json:"id"`
	Open     bool      `json:"open"`
	OpenedAt time.Time `json:"openedAt"`
}

// Registry is the single owner of both connection maps. All iteration
// happens inside it; callers only see snapshots and delivery counts.
type Registry struct {
	mu          sync.RWMutex
	business    map[string]map[string]*Session // endpointID -> connectionID -> session
	subscribers map[string]map[string]*Session // ownerID -> connectionID -> session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		business:    make(map[string]map[string]*Session),
		subscribers: make(map[string]map[string]*Session),
	}
}

// addBusiness registers a business session under its endpoint.
func (r *Registry) addBusiness(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.business[s.endpointID] == nil {
		r.business[s.endpointID] = make(map[string]*Session)
	}
	r.business[s.endpointID][s.id] = s
}

// removeBusiness drops a business session. Called exactly once, from the
// session's own close path.
func (r *Registry) removeBusiness(endpointID, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conns, ok := r.business[endpointID]; ok {
		delete(conns, connectionID)
		if len(conns) == 0 {
			delete(r.business, endpointID)
		}
	}
}

// addSubscriber registers a log subscriber under its owner.
func (r *Registry) addSubscriber(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subscribers[s.owner] == nil {
		r.subscribers[s.owner] = make(map[string]*Session)
	}
	r.subscribers[s.owner][s.id] = s
}

// removeSubscriber drops a log subscriber.
func (r *Registry) removeSubscriber(owner, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if subs, ok := r.subscribers[owner]; ok {
		delete(subs, connectionID)
		if len(subs) == 0 {
			delete(r.subscribers, owner)
		}
	}
}

// ListConnections returns the live business sessions for an endpoint.
func (r *Registry) ListConnections(endpointID string) []ConnectionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ConnectionInfo, 0, len(r.business[endpointID]))
	for _, s := range r.business[endpointID] {
		infos = append(infos, ConnectionInfo{ID: s.id, Open: s.IsOpen(), OpenedAt: s.openedAt})
	}
	return infos
}

// Send delivers payload to business sessions of an endpoint. With a
// connectionID it targets that one session, failing with
// ErrConnectionNotFound when it is absent or already closed; without one
// it broadcasts to every open session and returns the count actually
// delivered. Closed sessions are skipped silently; their registry entries
// are reclaimed by their own close events, not here.
func (r *Registry) Send(endpointID, connectionID, payload string) (int, error) {
	r.mu.RLock()
	conns, ok := r.business[endpointID]
	if !ok || len(conns) == 0 {
		r.mu.RUnlock()
		return 0, ErrNoConnections
	}

	if connectionID != "" {
		target := conns[connectionID]
		r.mu.RUnlock()
		if target == nil || !target.IsOpen() {
			return 0, ErrConnectionNotFound
		}
		if err := target.SendText(payload); err != nil {
			return 0, ErrConnectionNotFound
		}
		return 1, nil
	}

	snapshot := make([]*Session, 0, len(conns))
	for _, s := range conns {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	sent := 0
	for _, s := range snapshot {
		if !s.IsOpen() {
			continue
		}
		if err := s.SendText(payload); err == nil {
			sent++
		}
	}
	return sent, nil
}

// logFrame is the wire envelope pushed to log subscribers.
type logFrame struct {
	Type string         `json:"type"`
	Data *traffic.Entry `json:"data"`
}

// BroadcastLog delivers an entry to the subscribers of its owner, and to
// nobody else. Entries without an owner are never broadcast. Send
// failures are swallowed; a dead subscriber is cleaned up by its own
// close event.
func (r *Registry) BroadcastLog(entry *traffic.Entry) {
	if entry == nil || entry.Owner == "" {
		return
	}

	payload, err := json.Marshal(logFrame{Type: "log", Data: entry})
	if err != nil {
		return
	}

	r.mu.RLock()
	subs := r.subscribers[entry.Owner]
	snapshot := make([]*Session, 0, len(subs))
	for _, s := range subs {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	for _, s := range snapshot {
		if s.IsOpen() {
			_ = s.SendText(string(payload))
		}
	}
}

// Counts returns the number of live business sessions and subscribers.
func (r *Registry) Counts() (business, subscribers int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, conns := range r.business {
		business += len(conns)
	}
	for _, subs := range r.subscribers {
		subscribers += len(subs)
	}
	return business, subscribers
}

// Ensure Registry can serve as the traffic fan-out sink.
var _ traffic.Broadcaster = (*Registry)(nil)
