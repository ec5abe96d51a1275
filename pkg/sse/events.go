package sse

import (
	"net/http"
	"strings"
)

// Keepalive is the single comment event emitted for an all-blank body.
// Comments start with ':' and are ignored by EventSource clients.
const Keepalive = ": keepalive\n\n"

// SplitEvents segments a stored response body into wire events. Each
// non-empty line becomes one event record terminated by a blank line; if
// the body already carries "data:" framing the lines are forwarded
// verbatim, one event per line. An all-blank body yields a single
// keepalive comment so the stream is never empty.
func SplitEvents(body string) []string {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")

	events := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		events = append(events, line+"\n\n")
	}
	if len(events) == 0 {
		return []string{Keepalive}
	}
	return events
}

// WriteStreamHeaders writes the response headers that open an SSE stream
// and flushes them so the client sees the stream start before the first
// paced event.
func WriteStreamHeaders(w http.ResponseWriter, status int) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(status)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
