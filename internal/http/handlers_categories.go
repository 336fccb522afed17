package http

import (
	"encoding/json"
	"net/http"
	"time"

	"kassza/internal/core"
	"kassza/internal/log"
)

type categoryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

func toCategoryResponse(cat core.Category) categoryResponse {
	return categoryResponse{
		ID:        cat.ID,
		Name:      cat.Name,
		CreatedAt: cat.CreatedAt.Format(time.RFC3339),
	}
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	// The category list always renders; a storage fault yields an empty
	// list, not an error page.
	cats, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "category list query failed", log.FieldError, err)
	}

	out := make([]categoryResponse, 0, len(cats))
	for _, cat := range cats {
		out = append(out, toCategoryResponse(cat))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	cat, err := s.ledger.AddCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(cat))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateDashboard()
	w.WriteHeader(http.StatusNoContent)
}
