package endpoint

import (
	"mime"
	"strings"
	"time"
)

// Default response values applied when a definition omits them.
const (
	DefaultStatusCode  = 200
	DefaultContentType = "application/json"
	DefaultMethod      = "GET"
	DefaultResponse    = `{"message": "Hello World"}`
)

// ContentTypeEventStream is the media type that selects SSE emission.
const ContentTypeEventStream = "text/event-stream"

// DefaultSSEResponse is the example streaming payload used when an SSE
// definition is created without a body. It mimics an OpenAI-style chunked
// chat completion so the stream is immediately recognizable in a client.
const DefaultSSEResponse = `data: {"id":"chatcmpl-demo","object":"chat.completion.chunk","created":1764576715,"model":"demo-chat","choices":[{"index":0,"delta":{"role":"assistant","content":""},"finish_reason":null}]}

data: {"id":"chatcmpl-demo","object":"chat.completion.chunk","created":1764576715,"model":"demo-chat","choices":[{"index":0,"delta":{"content":"Hello"},"finish_reason":null}]}

data: {"id":"chatcmpl-demo","object":"chat.completion.chunk","created":1764576715,"model":"demo-chat","choices":[{"index":0,"delta":{"content":" there"},"finish_reason":null}]}

data: {"id":"chatcmpl-demo","object":"chat.completion.chunk","created":1764576715,"model":"demo-chat","choices":[{"index":0,"delta":{"content":"!"},"finish_reason":null}]}

data: {"id":"chatcmpl-demo","object":"chat.completion.chunk","created":1764576715,"model":"demo-chat","choices":[{"index":0,"delta":{"content":" This"},"finish_reason":null}]}

data: {"id":"chatcmpl-demo","object":"chat.completion.chunk","created":1764576715,"model":"demo-chat","choices":[{"index":0,"delta":{"content":" is"},"finish_reason":null}]}

data: {"id":"chatcmpl-demo","object":"chat.completion.chunk","created":1764576715,"model":"demo-chat","choices":[{"index":0,"delta":{"content":" a"},"finish_reason":null}]}

data: {"id":"chatcmpl-demo","object":"chat.completion.chunk","created":1764576715,"model":"demo-chat","choices":[{"index":0,"delta":{"content":" streamed"},"finish_reason":null}]}

data: {"id":"chatcmpl-demo","object":"chat.completion.chunk","created":1764576715,"model":"demo-chat","choices":[{"index":0,"delta":{"content":" mock"},"finish_reason":null}]}

data: {"id":"chatcmpl-demo","object":"chat.completion.chunk","created":1764576715,"model":"demo-chat","choices":[{"index":0,"delta":{"content":" response."},"finish_reason":"stop"}]}

data: [DONE]
`

// Definition is a stored rule mapping (path, method) to a synthetic
// response or WebSocket behavior. The (path, method) pair is globally
// unique across all owners; owner scoping applies only to management
// operations, never to dispatch.
type Definition struct {
	// ID is the opaque definition identifier.
	ID string `json:"id" bson:"_id"`

	// Owner is the opaque visitor id of the creator. Traffic matched
	// against this definition is logged under this identity.
	Owner string `json:"userId" bson:"userId"`

	// Path is the canonical request path (/test/... or /testws/...).
	Path string `json:"path" bson:"path"`

	// Method is the HTTP verb. Ignored for WebSocket definitions.
	Method string `json:"method" bson:"method"`

	// Response is the raw response body (or SSE body template).
	Response string `json:"response" bson:"response"`

	// StatusCode is the HTTP status returned for buffered responses.
	StatusCode int `json:"statusCode" bson:"statusCode"`

	// ContentType is the response MIME type. text/event-stream selects
	// SSE emission.
	ContentType string `json:"contentType" bson:"contentType"`

	// SSEDurationSeconds spreads the SSE events over a wall-clock
	// window. Meaningful only when ContentType is text/event-stream;
	// forced to 0 otherwise.
	SSEDurationSeconds float64 `json:"sseDurationSeconds" bson:"sseDurationSeconds"`

	// IsWebSocket marks the definition as WebSocket-only. HTTP requests
	// against it are rejected with a 400.
	IsWebSocket bool `json:"isWebSocket" bson:"isWebSocket"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Kind returns the normalization namespace implied by the WebSocket flag.
func (d *Definition) Kind() Kind {
	if d.IsWebSocket {
		return KindWebSocket
	}
	return KindHTTP
}

// IsSSE reports whether the definition emits as a Server-Sent-Events
// stream.
func (d *Definition) IsSSE() bool {
	return IsEventStream(d.ContentType)
}

// IsEventStream reports whether contentType resolves to the
// text/event-stream media type, ignoring parameters and case.
func IsEventStream(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Fall back to a manual split for values mime rejects.
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return strings.EqualFold(mediaType, ContentTypeEventStream)
}

// ClampSSEDuration resolves a requested SSE duration: non-SSE content
// types always get 0, and negative values are clamped to 0.
func ClampSSEDuration(contentType string, seconds float64) float64 {
	if !IsEventStream(contentType) {
		return 0
	}
	if seconds < 0 || seconds != seconds { // reject negatives and NaN
		return 0
	}
	return seconds
}

// ApplyDefaults fills zero-valued response fields in place. The response
// body default depends on the content type: SSE definitions get the
// example streaming payload.
func (d *Definition) ApplyDefaults() {
	if d.Method == "" {
		d.Method = DefaultMethod
	}
	if d.StatusCode == 0 {
		d.StatusCode = DefaultStatusCode
	}
	if d.ContentType == "" {
		d.ContentType = DefaultContentType
	}
	if d.Response == "" {
		if d.IsSSE() {
			d.Response = DefaultSSEResponse
		} else {
			d.Response = DefaultResponse
		}
	}
	d.SSEDurationSeconds = ClampSSEDuration(d.ContentType, d.SSEDurationSeconds)
}
