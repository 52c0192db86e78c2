// Package server runs the relay's HTTP server.
//
// It ties together the handlers, middleware, health endpoints and metrics
// and owns the listener lifecycle: binding, optional TLS with hot-reloaded
// certificates, and graceful shutdown.
//
// # Basic Usage
//
//	svc := relay.NewService(provider, relay.WithMetrics(collector))
//	srv := server.NewServer(cfg, svc,
//	    server.WithHealth(checker, health.NewVersionInfo(version, commit, date)),
//	    server.WithMetrics(collector),
//	    server.WithTracer(tracer),
//	)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled, then shuts down gracefully, waiting
// up to server.shutdown_timeout for in-flight requests.
//
// # Routes
//
//   - GET / - chat landing page
//   - GET /static/script.js - landing page script
//   - POST /api/messages - relay one message
//   - POST /upload - 501 until document retrieval exists
//   - GET /health, /ready, /version - probes and build information
//   - GET /metrics - Prometheus metrics, when enabled
//
// Any other path is 404, and a known path with the wrong method is 405.
//
// # Middleware Chain
//
// Outermost first: Recovery, Tracing, RequestID, Logging, CORS, Metrics.
// Metrics wraps the mux directly so it can label requests with the matched
// route pattern.
package server
