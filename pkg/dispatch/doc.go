// Package dispatch matches inbound requests against the endpoint
// registry and serves the synthetic response: a single buffered write, a
// paced SSE stream, or a rejection when the matched definition is
// WebSocket-only. Every non-preflight request appends exactly one traffic
// entry.
package dispatch
