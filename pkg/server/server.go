package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/coder-hombre/static-vines/pkg/config"
	"github.com/coder-hombre/static-vines/pkg/policy/engine"
	"github.com/coder-hombre/static-vines/pkg/policy/manager"
	"github.com/coder-hombre/static-vines/pkg/telemetry/health"
	"github.com/coder-hombre/static-vines/pkg/telemetry/tracing"
)

// SnapshotSource exposes the published configuration. *manager.Store
// implements it.
type SnapshotSource interface {
	Current() *manager.Snapshot
	Status() manager.Status
}

// StatsSource exposes engine counters. *engine.GrowthEngine implements it.
type StatsSource interface {
	Stats() engine.Stats
}

// Dependencies are the components the admin server reports on. Only
// Checker is required.
type Dependencies struct {
	Snapshots SnapshotSource
	Engine    StatsSource
	Checker   *health.Checker

	// Metrics serves Prometheus metrics at MetricsPath when non-nil.
	Metrics     http.Handler
	MetricsPath string

	// Tracer records a server span per request when non-nil.
	Tracer *tracing.Tracer

	Version health.VersionInfo
	Logger  *slog.Logger
}

// Server is the admin HTTP server. It serves health probes, metrics and
// read-only views of the configuration snapshot and engine counters. It
// never sits on the growth path.
type Server struct {
	config     *config.AdminConfig
	deps       Dependencies
	logger     *slog.Logger
	httpServer *http.Server

	mu           sync.RWMutex
	listener     net.Listener
	isRunning    bool
	shutdownOnce sync.Once
}

// New creates an admin server.
func New(cfg *config.AdminConfig, deps Dependencies) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("admin config is required")
	}
	if deps.Checker == nil {
		return nil, errors.New("health checker is required")
	}
	if deps.Metrics != nil && deps.MetricsPath == "" {
		deps.MetricsPath = config.DefaultMetricsPath
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		deps:   deps,
		logger: logger.With("component", "admin_server"),
	}
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// Listen binds the configured address. It is separate from Serve so
// callers can learn the bound address before serving.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return fmt.Errorf("server is already listening on %s", s.listener.Addr())
	}
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.listener == nil {
		s.mu.Unlock()
		return errors.New("server is not listening")
	}
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.isRunning = true
	ln := s.listener
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting admin server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("admin server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if ok {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			return err
		}
		return nil
	}
}

// Start listens and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Shutdown gracefully shuts down the server within the configured
// shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx := ctx
		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("admin server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	health.Register(mux, s.deps.Checker, s.deps.Version)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/stats", s.handleStats)
	if s.deps.Metrics != nil {
		mux.Handle(s.deps.MetricsPath, s.deps.Metrics)
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger)(handler)
	handler = requestIDMiddleware(handler)
	handler = tracing.HTTPMiddleware(s.deps.Tracer)(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}
