package handler

import (
	"net/http"

	"github.com/maktabat-alamal/storefront/internal/domain/product"
)

type featuredResponse struct {
	Position int               `json:"position"`
	Paused   bool              `json:"paused"`
	Items    []productResponse `json:"items"`
}

// getFeatured returns the newest products with the carousel's current
// rotation position. The rotator ring is resized to the listing so
// wraparound stays in range as the catalog changes.
func (h *Handler) getFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := h.deps.Products.List(r.Context(), product.ListQuery{})
	if err != nil {
		internalError(w, r, err)
		return
	}

	h.deps.Featured.Resize(max(len(products), 1))

	items := make([]productResponse, len(products))
	for i, p := range products {
		items[i] = toProductResponse(p)
	}
	respond(w, r, http.StatusOK, featuredResponse{
		Position: h.deps.Featured.Current(),
		Paused:   h.deps.Featured.Paused(),
		Items:    items,
	})
}

func (h *Handler) featuredNext(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, map[string]int{"position": h.deps.Featured.Next()})
}

func (h *Handler) featuredPrev(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, map[string]int{"position": h.deps.Featured.Prev()})
}

type selectRequest struct {
	Index int `json:"index"`
}

func (h *Handler) featuredSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	respond(w, r, http.StatusOK, map[string]int{"position": h.deps.Featured.JumpTo(req.Index)})
}

func (h *Handler) featuredPause(w http.ResponseWriter, r *http.Request) {
	h.deps.Featured.Pause()
	respond(w, r, http.StatusNoContent, nil)
}

func (h *Handler) featuredResume(w http.ResponseWriter, r *http.Request) {
	h.deps.Featured.Resume()
	respond(w, r, http.StatusNoContent, nil)
}
