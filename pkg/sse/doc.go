// Package sse turns a stored response body into a paced Server-Sent-Events
// stream. A body is segmented into one wire event per non-empty line, and a
// Stream delivers the events either back-to-back with a small fixed delay
// or spread evenly across a configured wall-clock window.
package sse
