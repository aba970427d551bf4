package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/maktabat-alamal/storefront/internal/cart"
	"github.com/maktabat-alamal/storefront/internal/domain/product"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrInvalidStatus = errors.New("invalid order status")
)

// Stock abstracts the product operations checkout needs: reading current
// stock and writing the decremented level.
type Stock interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
	SetStock(ctx context.Context, id string, stock int) error
}

// Orders abstracts order persistence for the service.
type Orders interface {
	Create(ctx context.Context, o Order) (string, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	SetStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}

// CheckoutRequest turns cart line items into an order.
type CheckoutRequest struct {
	Items         []cart.LineItem
	Customer      CustomerInfo
	Shipping      ShippingAddress
	PaymentMethod string
}

// Service implements checkout and order administration.
type Service struct {
	stock  Stock
	orders Orders
}

// NewService creates an order Service.
func NewService(stock Stock, orders Orders) *Service {
	return &Service{stock: stock, orders: orders}
}

// Checkout creates a pending order from the cart snapshot. Totals are
// computed from snapshot prices, not live catalog data. Stock is decremented
// per line with a floor of zero; a product that has since disappeared from
// the catalog is skipped, since the order records its own snapshot.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]Item, len(req.Items))
	total := decimal.Zero
	for i, line := range req.Items {
		var imageURL *string
		if len(line.Images) > 0 {
			imageURL = &line.Images[0]
		}
		items[i] = Item{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			ImageURL:  imageURL,
		}
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	o := Order{
		Items:           items,
		TotalPrice:      total,
		Status:          StatusPending,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.Shipping,
		CustomerInfo:    req.Customer,
	}

	id, err := s.orders.Create(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	o.ID = id

	s.decrementStock(ctx, req.Items)

	return &o, nil
}

// decrementStock lowers catalog stock after a successful checkout. Failures
// are logged but never fail the order: the cart and order never depend on
// catalog state for their own invariants.
func (s *Service) decrementStock(ctx context.Context, items []cart.LineItem) {
	lg := zctx.From(ctx)
	for _, line := range items {
		p, err := s.stock.GetByID(ctx, line.ProductID)
		if err != nil {
			if !errors.Is(err, product.ErrNotFound) {
				lg.Warn("Stock lookup failed", zap.String("product_id", line.ProductID), zap.Error(err))
			}
			continue
		}
		remaining := p.Stock - line.Quantity
		if remaining < 0 {
			remaining = 0
		}
		if err := s.stock.SetStock(ctx, line.ProductID, remaining); err != nil {
			lg.Warn("Stock decrement failed", zap.String("product_id", line.ProductID), zap.Error(err))
		}
	}
}

// UpdateStatus sets an order's status. Any known status may be assigned from
// the admin console; unknown values are rejected.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.orders.SetStatus(ctx, id, status)
}

// List returns all orders, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// GetByID returns an order by ID, or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}
