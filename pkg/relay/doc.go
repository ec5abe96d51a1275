// Package relay tracks live WebSocket sessions and performs directed or
// broadcast delivery. Two independent registries exist: business sessions
// keyed by the endpoint definition they matched, and log subscribers keyed
// by the owner whose traffic they watch.
package relay
