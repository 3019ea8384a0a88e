// ABOUTME: Server orchestrator that wires store, token manager, gate and handlers
// ABOUTME: Manages the HTTP listener, health endpoints and shutdown lifecycle

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Wox1e/LibraryAPI/internal/auth"
	"github.com/Wox1e/LibraryAPI/internal/config"
	"github.com/Wox1e/LibraryAPI/internal/library"
	"github.com/Wox1e/LibraryAPI/internal/metrics"
	"github.com/Wox1e/LibraryAPI/internal/store"
	"github.com/Wox1e/LibraryAPI/internal/token"
)

// Server runs the library HTTP API.
type Server struct {
	config     *config.Config
	store      store.Store
	httpServer *http.Server
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Options are the inputs to New. Store is optional; when nil New opens the
// store named by Config.
type Options struct {
	Config *config.Config
	Store  store.Store
	Logger *slog.Logger

	// Registry receives the library metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry

	// Now overrides the clock for tokens and date validation.
	Now func() time.Time
}

// OpenStore opens the store selected by cfg.Database with the configured
// rent limit.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.SQLStore, error) {
	opts := []store.Option{
		store.WithRentLimiter(store.MaxActiveRents(cfg.Library.BooksLimitForReader)),
		store.WithLogger(logger.With("component", "store")),
	}

	var s *store.SQLStore
	var err error
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		s, err = store.NewPostgresStore(ctx, cfg.Database.DSN, opts...)
	default:
		s, err = store.NewSQLiteStore(cfg.Database.Path, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// New creates a Server from opts.
func New(ctx context.Context, opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("server: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	tokens, err := token.NewManager(cfg.TokenConfig(), token.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("creating token manager: %w", err)
	}

	s := opts.Store
	if s == nil {
		if s, err = OpenStore(ctx, cfg, logger); err != nil {
			return nil, err
		}
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.NewMetrics(reg)

	gate, err := auth.NewGate(auth.GateConfig{
		Verifier:      tokens,
		Issuer:        tokens,
		Users:         s,
		SecureCookies: cfg.Auth.SecureCookies,
		Observer:      m,
		Logger:        logger.With("component", "auth"),
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating gate: %w", err)
	}

	api, err := library.New(library.Config{
		Store:  s,
		Gate:   gate,
		Logger: logger,
		Now:    now,
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating library API: %w", err)
	}

	srv := &Server{
		config:  cfg,
		store:   s,
		metrics: m,
		logger:  logger.With("component", "server"),
	}

	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("GET /health", srv.handleHealth)
	mux.HandleFunc("GET /health/ready", srv.handleReady)

	var wrap library.Wrapper
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, metrics.HandlerFor(reg))
		wrap = m.Instrument
		logger.Info("metrics enabled", "path", cfg.Metrics.Path)
	}
	api.Register(mux, wrap)

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	return srv, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln until the context is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context since the run
// context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops the HTTP server and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	return errors.Join(errs...)
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK if the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
