package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/fortitude-run/fortitude/pkg/auth"
	"github.com/fortitude-run/fortitude/pkg/classifier"
	"github.com/fortitude-run/fortitude/pkg/config"
	"github.com/fortitude-run/fortitude/pkg/httpapi/middleware"
	"github.com/fortitude-run/fortitude/pkg/pipeline"
	"github.com/fortitude-run/fortitude/pkg/storage"
	"github.com/fortitude-run/fortitude/pkg/telemetry/metrics"
)

// Deps wires the components a Server dispatches requests to. All
// fields are required except Classifier, which is only consulted by
// the classify routes (NewServer does not check it; a classify request
// against a nil Classifier fails at request time — callers always
// supply one in practice since pkg/pipeline also needs it).
type Deps struct {
	Pipeline      *pipeline.Pipeline
	Store         storage.Backend
	Classifier    *classifier.Classifier
	Authenticator *auth.Authenticator

	// Metrics, when non-nil, is mounted unauthenticated at MetricsPath
	// (Prometheus scrapers don't carry a bearer token), matching the
	// teacher's own un-gated /metrics endpoint.
	Metrics     *metrics.Collector
	MetricsPath string // defaults to "/metrics" if empty
}

// Server is the HTTP front end for the Fortitude research pipeline.
// Adapted from the teacher's pkg/server.Server: a http.Server guarded
// by a middleware chain, started/stopped under a mutex with a
// sync.Once-guarded shutdown.
type Server struct {
	cfg  config.ServerConfig
	deps Deps

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	running      bool
}

// NewServer builds a Server. It does not start listening until Start
// is called.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	return &Server{cfg: cfg, deps: deps}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// server stops for another reason.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.running = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.cfg.ListenAddress,
		Handler:        s.handler(),
		ReadTimeout:    s.cfg.ReadTimeout,
		WriteTimeout:   s.cfg.WriteTimeout,
		IdleTimeout:    s.cfg.IdleTimeout,
		MaxHeaderBytes: s.cfg.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting fortitude http server", "address", s.cfg.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server, honoring cfg.ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	})

	return shutdownErr
}

// Handler returns the fully wired http.Handler, primarily for tests
// (httptest.NewServer) that don't want to bind a real listener.
func (s *Server) Handler() http.Handler {
	return s.handler()
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	s.registerHealthRoutes(mux)
	s.registerResearchRoutes(mux)
	s.registerClassifyRoutes(mux)
	s.registerCacheRoutes(mux)
	if s.deps.Metrics != nil {
		path := s.deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.deps.Metrics.Handler())
	}

	var h http.Handler = mux
	h = middleware.TimeoutMiddleware(s.cfg.RequestDeadline)(h)
	h = middleware.CORSMiddleware(middleware.CORSConfig{
		Enabled:          s.cfg.CORS.Enabled,
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   s.cfg.CORS.AllowedMethods,
		AllowedHeaders:   s.cfg.CORS.AllowedHeaders,
		ExposedHeaders:   s.cfg.CORS.ExposedHeaders,
		MaxAge:           s.cfg.CORS.MaxAge,
		AllowCredentials: s.cfg.CORS.AllowCredentials,
	})(h)
	h = middleware.RequestIDMiddleware(h)
	h = middleware.LoggingMiddleware(h)
	h = middleware.RecoveryMiddleware(h)

	return h
}
