package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// accessWriter records the status and size of a response for the access
// log. A handler that never calls WriteHeader is recorded as 200.
type accessWriter struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func (aw *accessWriter) WriteHeader(code int) {
	if aw.wroteHeader {
		return
	}
	aw.status = code
	aw.wroteHeader = true
	aw.ResponseWriter.WriteHeader(code)
}

func (aw *accessWriter) Write(b []byte) (int, error) {
	if !aw.wroteHeader {
		aw.WriteHeader(http.StatusOK)
	}
	n, err := aw.ResponseWriter.Write(b)
	aw.bytes += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (aw *accessWriter) Unwrap() http.ResponseWriter {
	return aw.ResponseWriter
}

// accessLevel is Error for 5xx, Warn for 4xx and Info otherwise.
func accessLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// LoggingMiddleware writes one "request completed" entry per request with
// the method, path, matched route, status, response size and latency. The
// request and response bodies are never logged; relay failures carry their
// own entries from the relay service.
//
//	{"level":"WARN","msg":"request completed","request_id":"550e8400-...",
//	 "method":"POST","path":"/api/messages","route":"POST /api/messages",
//	 "status":400,"bytes":33,"duration_ms":1,"remote_addr":"192.0.2.7:54321"}
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			aw := &accessWriter{ResponseWriter: w, status: http.StatusOK}

			logger.DebugContext(r.Context(), "request started", "method", r.Method, "path", r.URL.Path)

			next.ServeHTTP(aw, r)

			logger.Log(r.Context(), accessLevel(aw.status), "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"route", r.Pattern,
				"status", aw.status,
				"bytes", aw.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		})
	}
}
