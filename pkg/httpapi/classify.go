package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fortitude-run/fortitude/pkg/classifier"
	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
	"github.com/fortitude-run/fortitude/pkg/storage"
)

// ClassificationTypesResponse is the payload for GET /api/v1/classify/types.
type ClassificationTypesResponse struct {
	Types []research.ResearchType `json:"types"`
}

// ClassificationListResponse is the payload for GET /api/v1/classify, a
// summary view over already-classified, cached queries (there is no
// separate classification log — every classification that reached the
// pipeline is recorded as a CacheEntry).
type ClassificationListResponse struct {
	Entries []research.CacheEntry `json:"entries"`
	Total   int                   `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

func (s *Server) registerClassifyRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/classify", requireAuth(s.deps.Authenticator, research.PermResearchRead, s.handleClassify))
	mux.HandleFunc("GET /api/v1/classify/types", requireAuth(s.deps.Authenticator, research.PermResearchRead, s.handleClassifyTypes))
	mux.HandleFunc("GET /api/v1/classify", requireAuth(s.deps.Authenticator, research.PermResearchRead, s.handleListClassifications))
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var query research.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, r, &ferrors.InvalidInputError{Field: "body", Message: "malformed JSON: " + err.Error()})
		return
	}

	classified, err := s.deps.Classifier.Classify(r.Context(), &query, classifier.Options{
		EnableAdvanced:         true,
		EnableContextDetection: true,
		ConfidenceThreshold:    0.3,
		IncludeExplanations:    true,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, classified)
}

func (s *Server) handleClassifyTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, ClassificationTypesResponse{Types: research.AllResearchTypes()})
}

func (s *Server) handleListClassifications(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, r, http.StatusOK, ClassificationListResponse{
		Entries: result.Entries, Total: result.Total, Limit: limit, Offset: offset,
	})
}
