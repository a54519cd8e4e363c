package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/haukened/pihole-dash/internal/dash/common/log"
)

// Server runs the dashboard's HTTP listener.
type Server struct {
	addr    string
	handler http.Handler
	logger  log.Logger

	mu       sync.Mutex
	running  bool
	srv      *http.Server
	listener net.Listener
	serveErr chan error
}

func NewServer(addr string, handler http.Handler, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Server{addr: addr, handler: handler, logger: logger}
}

// Start binds the listening socket and serves requests in the background.
// Requests inherit ctx as their base context.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("HTTP server already running")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind HTTP listener on %s: %w", s.addr, err)
	}

	s.listener = ln
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.serveErr = make(chan error, 1)
	s.running = true

	go func(srv *http.Server, ln net.Listener, errs chan<- error) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(map[string]any{"error": err.Error()}, "HTTP server failed")
			errs <- err
		}
		close(errs)
	}(s.srv, ln, s.serveErr)

	s.logger.Info(map[string]any{"address": ln.Addr().String()}, "HTTP server started")
	return nil
}

// Stop drains in-flight requests until ctx expires, then closes the listener.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	err := s.srv.Shutdown(ctx)
	if err != nil {
		s.logger.Warn(map[string]any{"error": err.Error()}, "HTTP server did not drain in time")
		_ = s.srv.Close()
	}
	if serveErr := <-s.serveErr; serveErr != nil && err == nil {
		err = serveErr
	}
	s.running = false
	s.logger.Info(map[string]any{"address": s.addr}, "HTTP server stopped")
	return err
}

// Address returns the bound address once started, else the configured one.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
