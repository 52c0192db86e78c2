package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"relayhq/azrelay/pkg/config"
	"relayhq/azrelay/pkg/proxy/handlers"
	"relayhq/azrelay/pkg/proxy/middleware"
	"relayhq/azrelay/pkg/retrieval"
	sectls "relayhq/azrelay/pkg/security/tls"
	"relayhq/azrelay/pkg/telemetry/health"
	"relayhq/azrelay/pkg/telemetry/metrics"
	"relayhq/azrelay/pkg/telemetry/tracing"
)

// Server is the relay's HTTP server.
type Server struct {
	config  *config.Config
	relayer handlers.Relayer

	checker   *health.Checker
	version   health.VersionInfo
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	retrieval retrieval.Capability
	reloader  *sectls.CertificateReloader
	logger    *slog.Logger

	httpServer   *http.Server
	listener     net.Listener
	ready        chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	started      bool
}

// Option configures a Server.
type Option func(*Server)

// WithHealth sets the checker behind /health and /ready and the build
// information behind /version.
func WithHealth(checker *health.Checker, version health.VersionInfo) Option {
	return func(s *Server) {
		s.checker = checker
		s.version = version
	}
}

// WithMetrics mounts the collector's handler at the configured metrics path
// and records per-route HTTP metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithTracer starts a server span per request.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithRetrieval sets the capability behind /upload.
func WithRetrieval(c retrieval.Capability) Option {
	return func(s *Server) { s.retrieval = c }
}

// WithCertificateReloader serves the inbound TLS certificate from r. The
// server starts the reloader's watcher.
func WithCertificateReloader(r *sectls.CertificateReloader) Option {
	return func(s *Server) { s.reloader = r }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a server for cfg that relays messages through relayer.
func NewServer(cfg *config.Config, relayer handlers.Relayer, opts ...Option) *Server {
	s := &Server{
		config:    cfg,
		relayer:   relayer,
		checker:   health.New(0),
		retrieval: retrieval.Unimplemented{},
		logger:    slog.Default(),
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listen address and serves until ctx is cancelled or the
// server fails. Cancelling ctx triggers a graceful Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server cannot be restarted")
	}
	s.isRunning = true
	s.started = true
	s.mu.Unlock()

	fail := func(err error) error {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}

	serverCfg := s.config.Server
	tlsEnabled := s.config.Security.TLS.Enabled

	s.httpServer = &http.Server{
		Addr:           serverCfg.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    serverCfg.ReadTimeout,
		WriteTimeout:   serverCfg.WriteTimeout,
		IdleTimeout:    serverCfg.IdleTimeout,
		MaxHeaderBytes: serverCfg.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	if tlsEnabled {
		if s.reloader != nil {
			if err := s.reloader.Start(ctx); err != nil {
				return fail(fmt.Errorf("failed to start certificate reloader: %w", err))
			}
		}
		tlsConfig, err := sectls.NewServerConfig(s.config.Security.TLS, s.reloader)
		if err != nil {
			return fail(fmt.Errorf("failed to configure TLS: %w", err))
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	ln, err := net.Listen("tcp", serverCfg.ListenAddress)
	if err != nil {
		return fail(fmt.Errorf("failed to listen on %s: %w", serverCfg.ListenAddress, err))
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting relay server",
			"address", ln.Addr().String(),
			"tls_enabled", tlsEnabled,
		)

		var err error
		if tlsEnabled {
			// Certificates come from TLSConfig.
			err = s.httpServer.ServeTLS(ln, "", "")
		} else {
			err = s.httpServer.Serve(ln)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()
	close(s.ready)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return fail(err)
	}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// requests up to the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		timeout := s.config.Server.ShutdownTimeout
		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("relay server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.wrap(s.routes())
}

// routes registers every endpoint on a new mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	index := handlers.NewIndexHandler()
	mux.Handle("GET /{$}", index)
	mux.Handle("GET /static/script.js", index.ScriptHandler())
	mux.Handle("POST /api/messages", handlers.NewMessagesHandler(s.relayer, s.config.Server.MaxBodyBytes, s.logger))
	mux.Handle("POST /upload", handlers.NewUploadHandler(s.retrieval, s.logger))

	health.Register(mux, s.checker, s.version)

	if metricsCfg := s.config.Telemetry.Metrics; s.metrics != nil && metricsCfg.Enabled {
		mux.Handle("GET "+metricsCfg.Path, s.metrics.Handler())
	}

	return mux
}

// wrap applies the middleware chain, outermost first:
// Recovery, Tracing, RequestID, Logging, CORS, Metrics.
func (s *Server) wrap(mux *http.ServeMux) http.Handler {
	var handler http.Handler = mux

	// Metrics sits directly on the mux so it sees r.Pattern.
	handler = s.metrics.Middleware(handler)
	handler = middleware.CORSMiddleware(s.config.Server.CORS)(handler)
	handler = middleware.LoggingMiddleware(s.logger)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}
