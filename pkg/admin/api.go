package admin

import (
	"log/slog"
	"net/http"

	"github.com/mockbay/mockbay/pkg/registry"
	"github.com/mockbay/mockbay/pkg/relay"
	"github.com/mockbay/mockbay/pkg/traffic"
)

// API serves the management routes. It owns no state of its own; every
// handler is glue between the request, the registry, the traffic buffer
// and the relay.
type API struct {
	registry *registry.Service
	logs     *traffic.Buffer
	relay    *relay.Registry
	log      *slog.Logger
}

// NewAPI creates the management API.
func NewAPI(reg *registry.Service, logs *traffic.Buffer, rel *relay.Registry, log *slog.Logger) *API {
	return &API{registry: reg, logs: logs, relay: rel, log: log}
}

// Handler returns the /api/ route table. The identity middleware is
// applied by the server composition, not here; handlers read the visitor
// id from the request context.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/me", a.handleMe)

	mux.HandleFunc("GET /api/endpoints", a.handleListEndpoints)
	mux.HandleFunc("POST /api/endpoints", a.handleCreateEndpoint)
	mux.HandleFunc("PUT /api/endpoints/{id}", a.handleUpdateEndpoint)
	mux.HandleFunc("DELETE /api/endpoints/{id}", a.handleDeleteEndpoint)

	mux.HandleFunc("GET /api/logs", a.handleListLogs)
	mux.HandleFunc("DELETE /api/logs", a.handleClearLogs)

	mux.HandleFunc("POST /api/ws/send", a.handleWsSend)
	mux.HandleFunc("GET /api/ws/connections/{endpointId}", a.handleWsConnections)

	return mux
}
