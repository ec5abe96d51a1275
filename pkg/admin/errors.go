// Error mapping for the management API. Full errors are logged
// server-side; clients get stable codes and messages that leak nothing
// about storage internals.

package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mockbay/mockbay/pkg/endpoint"
	"github.com/mockbay/mockbay/pkg/httputil"
	"github.com/mockbay/mockbay/pkg/registry"
)

// Safe messages for client responses.
const (
	ErrMsgInvalidJSON   = "Invalid JSON in request body"
	ErrMsgNotFound      = "Endpoint not found"
	ErrMsgConflict      = "Path and method already registered"
	ErrMsgInternalError = "An internal error occurred"
)

// writeServiceError maps a registry or validation failure onto the API
// error taxonomy. Ownership mismatches surface as plain not-found so ids
// reveal nothing about other visitors' endpoints.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, operation string, err error) {
	var verr *endpoint.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.WriteErrorWithDetails(w, http.StatusBadRequest, "validation_failed", verr.Message,
			map[string]string{"field": verr.Field})
	case errors.Is(err, registry.ErrConflict):
		httputil.WriteConflict(w, "conflict", ErrMsgConflict)
	case errors.Is(err, registry.ErrNotFound):
		httputil.WriteNotFound(w, "not_found", ErrMsgNotFound)
	default:
		if log != nil {
			log.Error("operation failed", "operation", operation, "error", err)
		}
		httputil.WriteInternalError(w, "internal_error", ErrMsgInternalError)
	}
}
