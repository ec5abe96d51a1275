// Package admin exposes the management API under /api/. Every route is
// scoped to the visitor id carried by the identity cookie: endpoint CRUD
// through the registry, the owner's traffic log view, and push/listing
// operations against live WebSocket sessions.
package admin
