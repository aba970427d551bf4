package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/maktabat-alamal/storefront/internal/domain/product"
)

type productResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Stock          int       `json:"stock"`
	Category       string    `json:"category"`
	SEOTitle       string    `json:"seoTitle,omitempty"`
	SEODescription string    `json:"seoDescription,omitempty"`
	Images         []string  `json:"images"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toProductResponse(p product.Product) productResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price.InexactFloat64(),
		Stock:          p.Stock,
		Category:       p.Category,
		SEOTitle:       p.SEOTitle,
		SEODescription: p.SEODescription,
		Images:         images,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := product.ListQuery{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	products, err := h.deps.Products.List(r.Context(), q)
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	respond(w, r, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, toProductResponse(*p))
}

type productRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	Stock          int      `json:"stock"`
	Category       string   `json:"category"`
	SEOTitle       string   `json:"seoTitle"`
	SEODescription string   `json:"seoDescription"`
	Images         []string `json:"images"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "name is required")
		return
	}
	if req.Price < 0 || req.Stock < 0 {
		respondError(w, r, http.StatusUnprocessableEntity, "price and stock must not be negative")
		return
	}

	id, err := h.deps.Products.Create(r.Context(), product.Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          decimal.NewFromFloat(req.Price),
		Stock:          req.Stock,
		Category:       req.Category,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
		Images:         req.Images,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, map[string]string{"id": id})
}

// productPatchRequest distinguishes absent fields from zero values.
type productPatchRequest struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	Price          *float64  `json:"price"`
	Stock          *int      `json:"stock"`
	Category       *string   `json:"category"`
	SEOTitle       *string   `json:"seoTitle"`
	SEODescription *string   `json:"seoDescription"`
	Images         *[]string `json:"images"`
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productPatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if (req.Price != nil && *req.Price < 0) || (req.Stock != nil && *req.Stock < 0) {
		respondError(w, r, http.StatusUnprocessableEntity, "price and stock must not be negative")
		return
	}

	patch := product.Patch{
		Name:           req.Name,
		Description:    req.Description,
		Stock:          req.Stock,
		Category:       req.Category,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
		Images:         req.Images,
	}
	if req.Price != nil {
		price := decimal.NewFromFloat(*req.Price)
		patch.Price = &price
	}

	err := h.deps.Products.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}
