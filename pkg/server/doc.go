// Package server composes the single combined listener: WebSocket
// upgrades go to the relay, /api/ to the management API, the /test/ and
// /testws/ namespaces to the dispatcher, the OpenAI-compatible chat
// mock to its own handler, and everything else to an optional static
// directory.
package server
