package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fortitude-run/fortitude/pkg/httpapi/middleware"
)

// envelope is the success-response wrapper shared by every route, per
// spec §6.
type envelope struct {
	Data      any       `json:"data"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

// errorEnvelope is the error-response wrapper shared by every route.
type errorEnvelope struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Path      string `json:"path,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Data:      data,
		RequestID: middleware.GetRequestID(r.Context()),
		Timestamp: time.Now().UTC(),
		Success:   true,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		ErrorCode: code,
		Message:   err.Error(),
		RequestID: middleware.GetRequestID(r.Context()),
		Path:      r.URL.Path,
	})
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
