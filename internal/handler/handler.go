// Package handler wires the storefront and admin console HTTP API. Handlers
// are thin: they decode requests, delegate to domain services, and map
// errors to JSON responses.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maktabat-alamal/storefront/internal/carousel"
	"github.com/maktabat-alamal/storefront/internal/cart"
	"github.com/maktabat-alamal/storefront/internal/contact"
	"github.com/maktabat-alamal/storefront/internal/domain/auth"
	"github.com/maktabat-alamal/storefront/internal/domain/category"
	"github.com/maktabat-alamal/storefront/internal/domain/content"
	"github.com/maktabat-alamal/storefront/internal/domain/order"
	"github.com/maktabat-alamal/storefront/internal/domain/product"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Products   *product.Repository
	Categories *category.Repository
	Content    *content.Repository
	Orders     *order.Service
	Carts      *cart.Manager
	Contact    *contact.Service
	Auth       *auth.Service
	Featured   *carousel.Rotator
}

// Handler exposes the API routes.
type Handler struct {
	deps Deps
}

// New constructs a Handler.
func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Routes builds the chi router for the /api surface.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Public storefront.
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/categories", h.listCategories)
	r.Get("/content/{id}", h.getContent)
	r.Post("/contact", h.submitContact)

	// Featured carousel.
	r.Route("/featured", func(r chi.Router) {
		r.Get("/", h.getFeatured)
		r.Post("/next", h.featuredNext)
		r.Post("/prev", h.featuredPrev)
		r.Post("/select", h.featuredSelect)
		r.Post("/pause", h.featuredPause)
		r.Post("/resume", h.featuredResume)
	})

	// Cart.
	r.Route("/carts", func(r chi.Router) {
		r.Post("/", h.createCart)
		r.Route("/{cartID}", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addCartItem)
			r.Put("/items/{productID}", h.updateCartItem)
			r.Delete("/items/{productID}", h.removeCartItem)
		})
	})

	r.Post("/checkout", h.checkout)

	// Auth.
	r.Post("/auth/signup", h.signUp)
	r.Post("/auth/signin", h.signIn)
	r.Post("/auth/signout", h.signOut)

	// Admin console, gated on an admin session.
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)

		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)

		r.Post("/categories", h.createCategory)
		r.Put("/categories/{id}", h.updateCategory)
		r.Delete("/categories/{id}", h.deleteCategory)

		r.Put("/content/{id}", h.saveContent)

		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Put("/orders/{id}/status", h.updateOrderStatus)
		r.Delete("/orders/{id}", h.deleteOrder)

		r.Get("/users", h.listUsers)
		r.Put("/users/{id}/admin", h.setUserAdmin)
	})

	return r
}
