package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/maktabat-alamal/storefront/internal/cart"
	"github.com/maktabat-alamal/storefront/internal/domain/product"
)

type cartItemResponse struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Stock     int      `json:"stock"`
	Images    []string `json:"images"`
	Quantity  int      `json:"quantity"`
}

type cartResponse struct {
	CartID     string             `json:"cartId"`
	Items      []cartItemResponse `json:"items"`
	TotalItems int                `json:"totalItems"`
	TotalPrice float64            `json:"totalPrice"`
}

func toCartResponse(cartID string, store *cart.Store) cartResponse {
	items := store.Items()
	out := make([]cartItemResponse, len(items))
	for i, it := range items {
		images := it.Images
		if images == nil {
			images = []string{}
		}
		out[i] = cartItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.InexactFloat64(),
			Stock:     it.Stock,
			Images:    images,
			Quantity:  it.Quantity,
		}
	}
	return cartResponse{
		CartID:     cartID,
		Items:      out,
		TotalItems: store.TotalItems(),
		TotalPrice: store.TotalPrice().InexactFloat64(),
	}
}

func (h *Handler) cartStore(w http.ResponseWriter, r *http.Request) (string, *cart.Store, bool) {
	cartID := chi.URLParam(r, "cartID")
	store, err := h.deps.Carts.Get(r.Context(), cartID)
	if err != nil {
		internalError(w, r, err)
		return "", nil, false
	}
	return cartID, store, true
}

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	id, store, err := h.deps.Carts.Create(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, toCartResponse(id, store))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cartID, store, ok := h.cartStore(w, r)
	if !ok {
		return
	}
	respond(w, r, http.StatusOK, toCartResponse(cartID, store))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	cartID, store, ok := h.cartStore(w, r)
	if !ok {
		return
	}
	store.ClearCart(r.Context())
	respond(w, r, http.StatusOK, toCartResponse(cartID, store))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "productId is required")
		return
	}

	// Snapshot the product at add time; the line item never re-reads the
	// catalog afterwards.
	p, err := h.deps.Products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}

	cartID, store, ok := h.cartStore(w, r)
	if !ok {
		return
	}
	store.AddItem(r.Context(), cart.Snapshot{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Images:      p.Images,
	}, req.Quantity)
	respond(w, r, http.StatusOK, toCartResponse(cartID, store))
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cartID, store, ok := h.cartStore(w, r)
	if !ok {
		return
	}
	store.UpdateItemQuantity(r.Context(), chi.URLParam(r, "productID"), req.Quantity)
	respond(w, r, http.StatusOK, toCartResponse(cartID, store))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	cartID, store, ok := h.cartStore(w, r)
	if !ok {
		return
	}
	store.RemoveItem(r.Context(), chi.URLParam(r, "productID"))
	respond(w, r, http.StatusOK, toCartResponse(cartID, store))
}
