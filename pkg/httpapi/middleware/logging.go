package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture the status code
// for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// LoggingMiddleware logs request start and completion with structured
// fields: method, path, status, latency, and request ID.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := context.WithValue(r.Context(), StartTimeKey, start)
		rw := newResponseWriter(w)
		requestID := GetRequestID(ctx)

		slog.DebugContext(ctx, "request started",
			"method", r.Method, "path", r.URL.Path, "request_id", requestID)

		next.ServeHTTP(rw, r.WithContext(ctx))

		latency := time.Since(start)
		level := slog.LevelInfo
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
		case rw.statusCode >= 400:
			level = slog.LevelWarn
		}

		slog.Log(ctx, level, "request completed",
			"method", r.Method, "path", r.URL.Path, "status", rw.statusCode,
			"latency_ms", latency.Milliseconds(), "request_id", requestID)
	})
}

// GetStartTime extracts the request start time from the context, or
// the zero time if absent.
func GetStartTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return t
	}
	return time.Time{}
}
