package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/maktabat-alamal/storefront/internal/domain/order"
)

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  *string `json:"imageUrl"`
}

type orderResponse struct {
	ID              string                `json:"id"`
	Items           []orderItemResponse   `json:"items"`
	TotalPrice      float64               `json:"totalPrice"`
	Status          order.Status          `json:"status"`
	PaymentMethod   string                `json:"paymentMethod"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	CustomerInfo    order.CustomerInfo    `json:"customerInfo"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

func toOrderResponse(o order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
		}
	}
	return orderResponse{
		ID:              o.ID,
		Items:           items,
		TotalPrice:      o.TotalPrice.InexactFloat64(),
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		CustomerInfo:    o.CustomerInfo,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type checkoutRequest struct {
	CartID        string                `json:"cartId"`
	Customer      order.CustomerInfo    `json:"customerInfo"`
	Shipping      order.ShippingAddress `json:"shippingAddress"`
	PaymentMethod string                `json:"paymentMethod"`
}

// checkout places an order from the cart's current snapshot and clears the
// cart on success.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CartID == "" {
		respondError(w, r, http.StatusUnprocessableEntity, "cartId is required")
		return
	}

	store, err := h.deps.Carts.Get(r.Context(), req.CartID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	placed, err := h.deps.Orders.Checkout(r.Context(), order.CheckoutRequest{
		Items:         store.Items(),
		Customer:      req.Customer,
		Shipping:      req.Shipping,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			respondError(w, r, http.StatusUnprocessableEntity, "cart is empty")
			return
		}
		internalError(w, r, err)
		return
	}

	store.ClearCart(r.Context())
	respond(w, r, http.StatusCreated, toOrderResponse(*placed))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.deps.Orders.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	respond(w, r, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.deps.Orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "order not found")
			return
		}
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, toOrderResponse(*o))
}

type statusRequest struct {
	Status order.Status `json:"status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.deps.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			respondError(w, r, http.StatusUnprocessableEntity, "invalid order status")
		case errors.Is(err, order.ErrNotFound):
			respondError(w, r, http.StatusNotFound, "order not found")
		default:
			internalError(w, r, err)
		}
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, r, http.StatusNoContent, nil)
}
