package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/converter/pkg/config"
	"mercator-hq/converter/pkg/export"
	"mercator-hq/converter/pkg/history"
	"mercator-hq/converter/pkg/records"
	"mercator-hq/converter/pkg/server/middleware"
	"mercator-hq/converter/pkg/telemetry/health"
	"mercator-hq/converter/pkg/telemetry/metrics"
	"mercator-hq/converter/pkg/telemetry/tracing"
)

// Fetcher loads a new record set into the shared holder.
type Fetcher interface {
	Fetch(ctx context.Context) (records.RecordSet, error)
	Busy() bool
	Type() string
}

// Exports encodes the held record set and reports export history.
type Exports interface {
	Export(ctx context.Context, format string) (*export.Output, error)
	Exporting() bool
	Config() config.ExportConfig
	History(ctx context.Context, limit int) ([]history.Entry, error)
}

// Deps are the components served over HTTP. Metrics, Tracer and Checker may
// be nil.
type Deps struct {
	Holder      *records.Holder
	Fetcher     Fetcher
	Exports     Exports
	Metrics     *metrics.Collector
	MetricsPath string
	Tracer      *tracing.Tracer
	Checker     *health.Checker
	Version     health.VersionInfo
}

// Server serves the preview page and the JSON API.
type Server struct {
	config       *config.ServerConfig
	deps         Deps
	httpServer   *http.Server
	listener     net.Listener
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server. It does not start listening.
func NewServer(cfg *config.ServerConfig, deps Deps) *Server {
	if deps.Checker == nil {
		deps.Checker = health.New(0)
	}
	return &Server{config: cfg, deps: deps}
}

// Start listens on the configured address and serves until ctx is cancelled
// or the listener fails. Cancelling ctx triggers a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting converter server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown stops accepting connections and waits for in-flight requests up to
// the configured shutdown timeout. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("converter server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler returns the routed handler with the full middleware chain, for use
// in tests or behind another server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.route(mux, "GET /{$}", "/", s.handleIndex)
	s.route(mux, "POST /api/fetch", "/api/fetch", s.handleFetch)
	s.route(mux, "GET /api/records", "/api/records", s.handleRecords)
	s.route(mux, "GET /api/export/{format}", "/api/export/{format}", s.handleExport)
	s.route(mux, "GET /api/sources", "/api/sources", s.handleSources)
	s.route(mux, "GET /api/exports", "/api/exports", s.handleExports)

	mux.Handle("/health", s.deps.Checker.LivenessHandler())
	mux.Handle("/ready", s.deps.Checker.ReadinessHandler())
	mux.Handle("GET /version", health.VersionHandler(s.deps.Version))
	if s.deps.Metrics.Enabled() && s.deps.MetricsPath != "" {
		mux.Handle("GET "+s.deps.MetricsPath, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.CORS(&s.config.CORS)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// route registers h under pattern with per-route tracing and metrics labelled
// by route.
func (s *Server) route(mux *http.ServeMux, pattern, route string, h http.HandlerFunc) {
	var handler http.Handler = h
	handler = middleware.Tracing(s.deps.Tracer, route)(handler)
	handler = middleware.Metrics(s.deps.Metrics, route)(handler)
	mux.Handle(pattern, handler)
}
