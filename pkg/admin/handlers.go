package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mockbay/mockbay/pkg/httputil"
	"github.com/mockbay/mockbay/pkg/identity"
	"github.com/mockbay/mockbay/pkg/registry"
	"github.com/mockbay/mockbay/pkg/relay"
)

// handleMe handles GET /api/me.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, map[string]string{
		"userId": identity.Visitor(r.Context()),
	})
}

// handleListEndpoints handles GET /api/endpoints.
func (a *API) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	defs, err := a.registry.List(r.Context(), identity.Visitor(r.Context()))
	if err != nil {
		writeServiceError(w, a.log, "list endpoints", err)
		return
	}
	httputil.WriteOK(w, defs)
}

// handleCreateEndpoint handles POST /api/endpoints.
func (a *API) handleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var params registry.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		httputil.WriteBadRequest(w, "invalid_json", ErrMsgInvalidJSON)
		return
	}

	def, err := a.registry.Create(r.Context(), identity.Visitor(r.Context()), params)
	if err != nil {
		writeServiceError(w, a.log, "create endpoint", err)
		return
	}
	httputil.WriteCreated(w, def)
}

// handleUpdateEndpoint handles PUT /api/endpoints/{id}.
func (a *API) handleUpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	var patch registry.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteBadRequest(w, "invalid_json", ErrMsgInvalidJSON)
		return
	}

	def, err := a.registry.Update(r.Context(), r.PathValue("id"), identity.Visitor(r.Context()), patch)
	if err != nil {
		writeServiceError(w, a.log, "update endpoint", err)
		return
	}
	httputil.WriteOK(w, def)
}

// handleDeleteEndpoint handles DELETE /api/endpoints/{id}.
func (a *API) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	if err := a.registry.Delete(r.Context(), r.PathValue("id"), identity.Visitor(r.Context())); err != nil {
		writeServiceError(w, a.log, "delete endpoint", err)
		return
	}
	httputil.WriteNoContent(w)
}

// handleListLogs handles GET /api/logs. Only the visitor's own entries
// come back, newest first.
func (a *API) handleListLogs(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, a.logs.ListForOwner(identity.Visitor(r.Context())))
}

// handleClearLogs handles DELETE /api/logs.
func (a *API) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	a.logs.ClearForOwner(identity.Visitor(r.Context()))
	httputil.WriteNoContent(w)
}

// wsSendRequest is the body of POST /api/ws/send. An empty connectionId
// broadcasts to every open session of the endpoint.
type wsSendRequest struct {
	EndpointID   string `json:"endpointId"`
	ConnectionID string `json:"connectionId"`
	Message      string `json:"message"`
}

// handleWsSend handles POST /api/ws/send. Only the endpoint owner may
// push messages into its sessions.
func (a *API) handleWsSend(w http.ResponseWriter, r *http.Request) {
	var req wsSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "invalid_json", ErrMsgInvalidJSON)
		return
	}
	if req.EndpointID == "" {
		httputil.WriteBadRequest(w, "validation_failed", "endpointId is required")
		return
	}

	if _, err := a.registry.Get(r.Context(), req.EndpointID, identity.Visitor(r.Context())); err != nil {
		writeServiceError(w, a.log, "send to connections", err)
		return
	}

	sent, err := a.relay.Send(req.EndpointID, req.ConnectionID, req.Message)
	switch {
	case errors.Is(err, relay.ErrNoConnections):
		httputil.WriteNotFound(w, "no_connections", "No live connections for this endpoint")
		return
	case errors.Is(err, relay.ErrConnectionNotFound):
		httputil.WriteNotFound(w, "connection_not_found", "Connection not found or closed")
		return
	case err != nil:
		writeServiceError(w, a.log, "send to connections", err)
		return
	}
	httputil.WriteOK(w, map[string]int{"sent": sent})
}

// handleWsConnections handles GET /api/ws/connections/{endpointId}.
func (a *API) handleWsConnections(w http.ResponseWriter, r *http.Request) {
	endpointID := r.PathValue("endpointId")
	if _, err := a.registry.Get(r.Context(), endpointID, identity.Visitor(r.Context())); err != nil {
		writeServiceError(w, a.log, "list connections", err)
		return
	}
	httputil.WriteOK(w, a.relay.ListConnections(endpointID))
}
