package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware recovers from panics in downstream handlers,
// logs the stack trace, and returns a 500 in the API's error envelope
// shape rather than crashing the server. Internal details (the stack
// trace) are logged, never returned to the client.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				requestID := GetRequestID(r.Context())
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", rec,
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error_code": "internal_error",
					"message":    "an internal error occurred",
					"request_id": requestID,
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
