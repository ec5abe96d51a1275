package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mockbay/mockbay/internal/storage"
	"github.com/mockbay/mockbay/pkg/admin"
	"github.com/mockbay/mockbay/pkg/config"
	"github.com/mockbay/mockbay/pkg/dispatch"
	"github.com/mockbay/mockbay/pkg/identity"
	"github.com/mockbay/mockbay/pkg/logging"
	"github.com/mockbay/mockbay/pkg/registry"
	"github.com/mockbay/mockbay/pkg/relay"
	"github.com/mockbay/mockbay/pkg/traffic"
)

const shutdownTimeout = 10 * time.Second

// Server is the combined HTTP and WebSocket listener.
type Server struct {
	cfg   config.Config
	log   *slog.Logger
	logs  *traffic.Buffer
	relay *relay.Handler

	httpServer *http.Server
	handler    http.Handler
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// New wires the full request path over the given definition store.
func New(cfg config.Config, store storage.EndpointStore, opts ...Option) *Server {
	s := &Server{
		cfg: cfg,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	relayRegistry := relay.NewRegistry()
	s.logs = traffic.NewBuffer(cfg.LogCapacity)
	// Every appended entry fans out live to the owner's subscribers.
	s.logs.SetBroadcaster(relayRegistry)

	s.relay = relay.NewHandler(relayRegistry, store, s.logs, s.log)

	api := admin.NewAPI(registry.NewService(store), s.logs, relayRegistry, s.log)
	dispatcher := dispatch.NewHandler(store, s.logs, s.log)
	chat := newChatMock(s.logs, s.log)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.Handler())
	mux.Handle("/test/", dispatcher)
	mux.Handle("/testws/", dispatcher)
	mux.Handle("POST /v1/chat/completions", chat)
	mux.Handle("POST /v1/open/chat/common", chat)
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	plain := identity.Middleware(mux)
	s.handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Upgrade requests skip the cookie-minting middleware; a
		// handshake response cannot usefully set one anyway.
		if relay.IsUpgradeRequest(r) {
			s.relay.ServeHTTP(w, r)
			return
		}
		plain.ServeHTTP(w, r)
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, upgrade routing included. Intended
// for tests driving the server through httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens until ctx is cancelled, then drains with a bounded
// graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	s.log.Info("server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
