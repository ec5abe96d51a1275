package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mockbay/mockbay/pkg/endpoint"
	"github.com/mockbay/mockbay/pkg/identity"
	"github.com/mockbay/mockbay/pkg/sse"
	"github.com/mockbay/mockbay/pkg/traffic"
)

// chatStreamInterval paces the canned completion chunks. Fast enough to
// feel live, slow enough that clients exercise their streaming path.
const chatStreamInterval = 50 * time.Millisecond

// chatCompletionBody is the non-streaming canned answer.
const chatCompletionBody = `{"id":"chatcmpl-demo","object":"chat.completion","created":1764576715,"model":"demo-chat","choices":[{"index":0,"message":{"role":"assistant","content":"Hello there! This is a mock response."},"finish_reason":"stop"}],"usage":{"prompt_tokens":9,"completion_tokens":9,"total_tokens":18}}`

// chatMock answers OpenAI-style chat completion requests without any
// stored definition, so SDK clients can point at the server unmodified.
// Requests are logged under the requesting visitor.
type chatMock struct {
	logs *traffic.Buffer
	log  *slog.Logger
}

func newChatMock(logs *traffic.Buffer, log *slog.Logger) *chatMock {
	return &chatMock{logs: logs, log: log}
}

func (c *chatMock) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(io.LimitReader(r.Body, 64*1024))

	var req struct {
		Stream bool `json:"stream"`
	}
	// A malformed body still gets the non-streaming answer; chat SDKs
	// are not the place to surface JSON lint errors.
	_ = json.Unmarshal(body, &req)

	visitor := identity.Visitor(r.Context())
	c.logs.Append(&traffic.Entry{
		Kind:        traffic.KindHTTP,
		Matched:     true,
		Method:      r.Method,
		Path:        r.URL.Path,
		Owner:       visitor,
		ClientOwner: visitor,
		IP:          identity.ClientIP(r),
		Headers:     r.Header,
		Query:       r.URL.Query(),
		Body:        string(body),
		Timestamp:   time.Now(),
	})

	if !req.Stream {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, chatCompletionBody)
		return
	}

	sse.WriteStreamHeaders(w, http.StatusOK)
	stream := sse.NewStream(sse.SplitEvents(endpoint.DefaultSSEResponse), 0,
		sse.WithInterval(chatStreamInterval))
	if err := stream.Run(r.Context(), w); err != nil {
		c.log.Debug("chat stream ended early", "error", err)
	}
}

var _ http.Handler = (*chatMock)(nil)
