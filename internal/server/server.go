package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vardius/shutdown"

	"github.com/pageza/what-to-cook/backend/config"
	"github.com/pageza/what-to-cook/backend/internal/logging"
)

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	http *http.Server
}

// New creates a server for handler listening on the configured address
func New(cfg *config.Config, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			// recipe generation makes two model calls
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  2 * time.Minute,
		},
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.http.Addr
}

// Start serves until the server is shut down
func (s *Server) Start() error {
	logging.Logger.Info("starting server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Run starts the server and blocks until SIGINT or SIGTERM, then drains
// in-flight requests and calls each cleanup in order.
func (s *Server) Run(cleanup ...func()) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	stop := func() {
		logging.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			logging.Logger.Error("server shutdown error", "error", err)
		}
		for _, f := range cleanup {
			f()
		}
		logging.Logger.Info("server stopped")
	}

	done := make(chan struct{})
	go func() {
		shutdown.GracefulStop(stop)
		close(done)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		<-done
		return nil
	case <-done:
		return <-errCh
	}
}
