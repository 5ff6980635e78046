package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
	"github.com/fortitude-run/fortitude/pkg/storage"
)

// CacheSearchResponse is the payload for GET /api/v1/cache/search.
type CacheSearchResponse struct {
	Entries []research.CacheEntry `json:"entries"`
	Total   int                   `json:"total"`
}

// CacheInvalidateResponse is the payload for POST /api/v1/cache/invalidate.
type CacheInvalidateResponse struct {
	Count      int64 `json:"count"`
	BytesFreed int64 `json:"bytes_freed"`
}

// CacheCleanupResponse is the payload for POST /api/v1/cache/cleanup.
type CacheCleanupResponse struct {
	Count      int64 `json:"count"`
	BytesFreed int64 `json:"bytes_freed"`
}

func (s *Server) registerCacheRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/cache/stats", requireAuth(s.deps.Authenticator, research.PermResourcesRead, s.handleCacheStats))
	mux.HandleFunc("GET /api/v1/cache/search", requireAuth(s.deps.Authenticator, research.PermResourcesRead, s.handleCacheSearch))
	mux.HandleFunc("POST /api/v1/cache/invalidate", requireAuth(s.deps.Authenticator, research.PermAdmin, s.handleCacheInvalidate))
	mux.HandleFunc("POST /api/v1/cache/cleanup", requireAuth(s.deps.Authenticator, research.PermAdmin, s.handleCacheCleanup))
	mux.HandleFunc("GET /api/v1/cache/{key}", requireAuth(s.deps.Authenticator, research.PermResourcesRead, s.handleCacheGet))
	mux.HandleFunc("DELETE /api/v1/cache/{key}", requireAuth(s.deps.Authenticator, research.PermAdmin, s.handleCacheDelete))
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Store.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleCacheSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := paginationParams(q.Get("limit"), q.Get("offset"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.deps.Store.Search(r.Context(), storage.SearchQuery{
		Text:   q.Get("query"),
		Limit:  limit,
		Offset: offset,
		Sort:   storage.SortOrder(q.Get("sort")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, CacheSearchResponse{Entries: result.Entries, Total: result.Total})
}

func (s *Server) handleCacheGet(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	result, ok, err := s.deps.Store.Lookup(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, &ferrors.NotFoundError{Kind: "cache_entry", ID: key})
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleCacheDelete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	report, err := s.deps.Store.Invalidate(r.Context(), storage.InvalidateCriteria{Keys: []string{key}})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if report.Count == 0 {
		writeError(w, r, &ferrors.NotFoundError{Kind: "cache_entry", ID: key})
		return
	}

	writeNoContent(w)
}

func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	var criteria storage.InvalidateCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeError(w, r, &ferrors.InvalidInputError{Field: "body", Message: "malformed JSON: " + err.Error()})
		return
	}

	report, err := s.deps.Store.Invalidate(r.Context(), criteria)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, CacheInvalidateResponse{Count: report.Count, BytesFreed: report.BytesFreed})
}

func (s *Server) handleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Store.Cleanup(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, CacheCleanupResponse{Count: report.Count, BytesFreed: report.BytesFreed})
}
