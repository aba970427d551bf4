package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Namespace is the fixed storage key under which cart state is persisted.
// It is versionless: the persisted shape is {"items": [...]}.
const Namespace = "maktabat-al-amal-cart-storage"

// Slot is a single named slot in durable storage holding the serialized
// cart state. Load returns (nil, nil) when the slot has never been written.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// lineItemJSON is the persisted wire form of a line item.
type lineItemJSON struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images,omitempty"`
	Quantity    int             `json:"quantity"`
}

type stateJSON struct {
	Items []lineItemJSON `json:"items"`
}

// Marshal serializes the state to its persisted JSON form.
func Marshal(s State) ([]byte, error) {
	items := s.Items()
	doc := stateJSON{Items: make([]lineItemJSON, len(items))}
	for i, it := range items {
		doc.Items[i] = lineItemJSON{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Description: it.Description,
			Category:    it.Category,
			Price:       it.Price,
			Stock:       it.Stock,
			Images:      it.Images,
			Quantity:    it.Quantity,
		}
	}
	return json.Marshal(doc)
}

// Unmarshal parses persisted JSON back into a State, dropping invalid
// entries rather than failing the whole cart.
func Unmarshal(data []byte) (State, error) {
	var doc stateJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return State{}, errors.Wrap(err, "decode cart state")
	}
	items := make([]LineItem, len(doc.Items))
	for i, it := range doc.Items {
		items[i] = LineItem{
			Snapshot: Snapshot{
				ProductID:   it.ProductID,
				Name:        it.Name,
				Description: it.Description,
				Category:    it.Category,
				Price:       it.Price,
				Stock:       it.Stock,
				Images:      it.Images,
			},
			Quantity: it.Quantity,
		}
	}
	return fromItems(items), nil
}

// Store is the authoritative cart container. Mutations go through the pure
// State reducer under a mutex and are persisted synchronously to the Slot
// before the call returns. A persist failure is logged and does not roll
// back the in-memory state: the cart's invariants never depend on storage.
type Store struct {
	slot Slot
	lg   *zap.Logger

	mu    sync.Mutex
	state State
}

// NewStore creates a Store rehydrated from the slot. An empty or missing
// slot yields an empty cart; a corrupt payload is logged and discarded.
func NewStore(ctx context.Context, slot Slot, lg *zap.Logger) (*Store, error) {
	s := &Store{slot: slot, lg: lg, state: Empty()}
	data, err := slot.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load cart slot")
	}
	if len(data) > 0 {
		state, err := Unmarshal(data)
		if err != nil {
			lg.Warn("Discarding corrupt cart state", zap.Error(err))
		} else {
			s.state = state
		}
	}
	return s, nil
}

// AddItem merges a product snapshot into the cart. The quantity defaults to 1
// when non-positive. No stock ceiling is enforced here.
func (s *Store) AddItem(ctx context.Context, p Snapshot, quantity int) {
	s.mutate(ctx, func(st State) State { return st.Add(p, quantity) })
}

// RemoveItem deletes a line item; unknown IDs are a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mutate(ctx, func(st State) State { return st.Remove(productID) })
}

// UpdateItemQuantity sets an absolute quantity; zero or below removes the
// line item. Unknown IDs are a no-op.
func (s *Store) UpdateItemQuantity(ctx context.Context, productID string, quantity int) {
	s.mutate(ctx, func(st State) State { return st.SetQuantity(productID, quantity) })
}

// ClearCart empties the cart unconditionally.
func (s *Store) ClearCart(ctx context.Context) {
	s.mutate(ctx, func(st State) State { return st.Clear() })
}

// Items returns the current line items sorted by product ID.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Items()
}

// TotalItems returns the sum of quantities across all line items.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalItems()
}

// TotalPrice returns the sum of price*quantity across all line items.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalPrice()
}

func (s *Store) mutate(ctx context.Context, fn func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) {
	data, err := Marshal(s.state)
	if err != nil {
		s.lg.Error("Marshal cart state", zap.Error(err))
		return
	}
	if err := s.slot.Save(ctx, data); err != nil {
		s.lg.Error("Persist cart state", zap.Error(err))
	}
}
