package httpapi

import (
	"net/http"
	"time"

	"github.com/fortitude-run/fortitude/pkg/research"
)

// HealthResponse is returned by both health routes; AuthSubject and
// AuthPermissions are only populated on the protected route.
type HealthResponse struct {
	Status          string    `json:"status"`
	Time            time.Time `json:"time"`
	AuthSubject     string    `json:"auth_subject,omitempty"`
	AuthPermissions []string  `json:"auth_permissions,omitempty"`
}

func (s *Server) registerHealthRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/health/protected", requireAuth(s.deps.Authenticator, research.PermResearchRead, s.handleHealthProtected))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Time: time.Now().UTC()})
}

func (s *Server) handleHealthProtected(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Time: time.Now().UTC()}
	if tok := authTokenFromContext(r.Context()); tok != nil {
		resp.AuthSubject = tok.Subject
		for _, p := range tok.Permissions {
			resp.AuthPermissions = append(resp.AuthPermissions, string(p))
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}
