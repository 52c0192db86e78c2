package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"relayhq/azrelay/pkg/proxy/types"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns
// 500 {"error":"Internal Server Error"}. The panic value and stack are
// logged under the internal category and never sent to the client.
//
// RecoveryMiddleware runs outside RequestIDMiddleware, so the request ID
// is read back from the response header. http.ErrAbortHandler is
// re-panicked so net/http can abort the response.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			slog.ErrorContext(r.Context(), "internal error relaying message",
				"category", "internal",
				"error", fmt.Sprint(rec),
				"request_id", w.Header().Get(RequestIDHeader),
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(types.NewErrorResponse(types.MsgInternal))
		}()

		next.ServeHTTP(w, r)
	})
}

