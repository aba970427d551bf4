package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/maktabat-alamal/storefront/internal/domain/category"
)

type categoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.deps.Categories.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = categoryResponse{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
		}
	}
	respond(w, r, http.StatusOK, out)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "name is required")
		return
	}

	id, err := h.deps.Categories.Create(r.Context(), category.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "name is required")
		return
	}

	err := h.deps.Categories.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "category not found")
			return
		}
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}
