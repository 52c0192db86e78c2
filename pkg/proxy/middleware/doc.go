// Package middleware provides the HTTP middleware wrapped around the relay
// routes.
//
// # Middleware Chain
//
// The server composes the chain outermost first:
//
//	Recovery -> Tracing -> RequestID -> Logging -> CORS -> Metrics -> mux
//
// Tracing and Metrics live in the telemetry packages; the rest are here.
//
// # Middleware Types
//
//   - RecoveryMiddleware: recover from panics, return 500 {"error":"Internal Server Error"}
//   - RequestIDMiddleware: accept or generate X-Request-ID, store it for log records
//   - LoggingMiddleware: one "request completed" entry per request
//   - CORSMiddleware: CORS headers and preflight handling from config.CORSConfig
//
// # Request ID
//
// A client-supplied X-Request-ID is kept when it is printable ASCII of at
// most 128 bytes. Otherwise a UUID v4 is generated:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The ID is stored with logging.WithRequestID, so every log record written
// with a request context carries it.
//
// # Logging
//
// LoggingMiddleware logs at Info for successful requests, Warn for 4xx and
// Error for 5xx. Message bodies are never logged.
package middleware
