package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"

	"daybook-hq/daybook/pkg/auth"
	"daybook-hq/daybook/pkg/config"
	"daybook-hq/daybook/pkg/limits/admission"
	"daybook-hq/daybook/pkg/reflection"
	"daybook-hq/daybook/pkg/store"
	"daybook-hq/daybook/pkg/telemetry/logging"
	"daybook-hq/daybook/pkg/telemetry/metrics"
)

// Deps are the collaborators the server wires into its routes.
type Deps struct {
	Store       store.Store
	Coordinator *reflection.Coordinator
	Gate        *admission.Gate
	Auth        auth.Authenticator
	Logger      *logging.Logger
	Metrics     *metrics.Collector
}

// Server is the Daybook HTTP server.
type Server struct {
	config *config.Config
	deps   Deps

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server from the config and its collaborators.
func NewServer(cfg *config.Config, deps Deps) *Server {
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown, which is triggered
// by context cancellation, SIGTERM/SIGINT, or Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("starting server", "address", s.config.Server.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.deps.Logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.deps.Logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.deps.Logger.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.deps.Logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler builds the full route and middleware tree. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoveryMiddleware)
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(admission.Middleware(s.deps.Gate, s.deps.Logger, s.deps.Metrics))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if s.config.Telemetry.Metrics.Enabled && s.deps.Metrics != nil {
		r.Method(http.MethodGet, s.config.Telemetry.Metrics.Path, s.deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(s.deps.Auth, s.deps.Logger))

		r.Post("/entries", s.handleCreateEntry)
		r.Get("/entries", s.handleListEntries)
		r.Post("/weekly", s.handleWeekly)
		r.Get("/reflections", s.handleListReflections)
	})

	return r
}
