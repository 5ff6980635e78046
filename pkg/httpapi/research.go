package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
	"github.com/fortitude-run/fortitude/pkg/storage"
)

// ResearchListResponse is the payload for GET /api/v1/research.
type ResearchListResponse struct {
	Entries []research.CacheEntry `json:"entries"`
	Total   int                   `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

func (s *Server) registerResearchRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/research", requireAuth(s.deps.Authenticator, research.PermResearchRead, s.handleCreateResearch))
	mux.HandleFunc("GET /api/v1/research/{id}", requireAuth(s.deps.Authenticator, research.PermResearchRead, s.handleGetResearch))
	mux.HandleFunc("GET /api/v1/research", requireAuth(s.deps.Authenticator, research.PermResearchRead, s.handleListResearch))
}

func (s *Server) handleCreateResearch(w http.ResponseWriter, r *http.Request) {
	var query research.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, r, &ferrors.InvalidInputError{Field: "body", Message: "malformed JSON: " + err.Error()})
		return
	}
	if err := query.Validate(); err != nil {
		writeError(w, r, &ferrors.InvalidInputError{Field: "text", Message: err.Error()})
		return
	}

	result, err := s.deps.Pipeline.Process(r.Context(), &query)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, result)
}

func (s *Server) handleGetResearch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result, ok, err := s.deps.Store.Lookup(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, &ferrors.NotFoundError{Kind: "research_result", ID: id})
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleListResearch(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paginationParams(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.deps.Store.Search(r.Context(), storage.SearchQuery{
		Limit: limit, Offset: offset, Sort: storage.SortNewest,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ResearchListResponse{
		Entries: result.Entries, Total: result.Total, Limit: limit, Offset: offset,
	})
}
