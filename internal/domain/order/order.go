// Package order holds the order model, its document-store repository, and
// the checkout service.
package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/maktabat-alamal/storefront/internal/docstore"
)

// Collection is the document-store collection holding orders.
const Collection = "orders"

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Item is a purchased line captured from the cart snapshot at checkout.
// ImageURL is explicitly nullable: an item with no images stores null.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  *string         `json:"imageUrl"`
}

// ShippingAddress is the delivery destination supplied at checkout.
type ShippingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// CustomerInfo identifies the ordering customer.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Order is a completed checkout.
type Order struct {
	ID              string          `json:"-"`
	Items           []Item          `json:"items"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          Status          `json:"status"`
	PaymentMethod   string          `json:"paymentMethod"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	CustomerInfo    CustomerInfo    `json:"customerInfo"`
	CreatedAt       time.Time       `json:"-"`
	UpdatedAt       time.Time       `json:"-"`
}

// Repository persists orders in the document store.
type Repository struct {
	store docstore.Store
}

// NewRepository returns a Repository over the given document store.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Create adds a new order and returns its generated ID.
func (r *Repository) Create(ctx context.Context, o Order) (string, error) {
	id, err := r.store.Add(ctx, Collection, o)
	if err != nil {
		return "", errors.Wrap(err, "add order")
	}
	return id, nil
}

// GetByID returns an order by ID, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*Order, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	return decode(doc)
}

// List returns all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]Order, error) {
	docs, err := r.store.List(ctx, Collection, nil, docstore.OrderBy{Field: "createdAt", Direction: docstore.Desc})
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	orders := make([]Order, 0, len(docs))
	for i := range docs {
		o, err := decode(&docs[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// SetStatus updates only the status field of an existing order.
func (r *Repository) SetStatus(ctx context.Context, id string, status Status) error {
	if err := r.store.Update(ctx, Collection, id, map[string]any{"status": status}); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrapf(err, "update order %q", id)
	}
	return nil
}

// Delete removes an order; deleting an absent order is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return errors.Wrapf(err, "delete order %q", id)
	}
	return nil
}

func decode(doc *docstore.Document) (*Order, error) {
	var o Order
	if err := json.Unmarshal(doc.Data, &o); err != nil {
		return nil, errors.Wrapf(err, "decode order %q", doc.ID)
	}
	o.ID = doc.ID
	o.CreatedAt = doc.CreatedAt
	o.UpdatedAt = doc.UpdatedAt
	return &o, nil
}
