// Package cart implements the shopping cart state container: a pure reducer
// over line items keyed by product ID, and a Store that persists every
// mutation through a storage Slot.
package cart

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Snapshot holds the product attributes frozen into a line item at add time.
// They are never re-fetched from the live catalog.
type Snapshot struct {
	ProductID   string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Images      []string
}

// LineItem is a product snapshot plus a quantity. Quantity is always >= 1
// while the item is present in the cart.
type LineItem struct {
	Snapshot
	Quantity int
}

// State is the aggregate cart state: at most one line item per product ID.
// State values are immutable; every transition returns a new State sharing
// no mutable data with its input, so transitions are testable without I/O.
type State struct {
	items map[string]LineItem
}

// Empty returns the empty cart state.
func Empty() State {
	return State{}
}

func (s State) clone() map[string]LineItem {
	items := make(map[string]LineItem, len(s.items)+1)
	for id, it := range s.items {
		items[id] = it
	}
	return items
}

// Add merges the product snapshot into the state. If a line item with the
// same product ID exists, only its quantity is incremented; the stored
// snapshot wins over the new one. Otherwise a new line item is created with
// the given quantity. Non-positive quantities default to 1.
func (s State) Add(p Snapshot, quantity int) State {
	if quantity <= 0 {
		quantity = 1
	}
	items := s.clone()
	if existing, ok := items[p.ProductID]; ok {
		existing.Quantity += quantity
		items[p.ProductID] = existing
	} else {
		items[p.ProductID] = LineItem{Snapshot: p, Quantity: quantity}
	}
	return State{items: items}
}

// Remove deletes the line item with the given product ID. Unknown IDs are a
// no-op.
func (s State) Remove(productID string) State {
	if _, ok := s.items[productID]; !ok {
		return s
	}
	items := s.clone()
	delete(items, productID)
	return State{items: items}
}

// SetQuantity sets the absolute quantity of an existing line item. A
// quantity of zero or below removes the item instead of retaining a
// zero-quantity entry. Unknown IDs are a no-op.
func (s State) SetQuantity(productID string, quantity int) State {
	existing, ok := s.items[productID]
	if !ok {
		return s
	}
	items := s.clone()
	if quantity <= 0 {
		delete(items, productID)
	} else {
		existing.Quantity = quantity
		items[productID] = existing
	}
	return State{items: items}
}

// Clear returns the empty state.
func (s State) Clear() State {
	return State{}
}

// Get returns the line item for the given product ID.
func (s State) Get(productID string) (LineItem, bool) {
	it, ok := s.items[productID]
	return it, ok
}

// Len returns the number of distinct line items.
func (s State) Len() int {
	return len(s.items)
}

// Items returns the line items sorted by product ID for stable output.
func (s State) Items() []LineItem {
	items := make([]LineItem, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductID < items[j].ProductID
	})
	return items
}

// TotalItems returns the sum of quantities across all line items.
func (s State) TotalItems() int {
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice returns the sum of price*quantity across all line items.
// Presentation rounding is the caller's concern.
func (s State) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// fromItems rebuilds a State from a flat item list, dropping entries with
// non-positive quantities or duplicate product IDs (first occurrence wins).
func fromItems(items []LineItem) State {
	if len(items) == 0 {
		return State{}
	}
	m := make(map[string]LineItem, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if _, ok := m[it.ProductID]; ok {
			continue
		}
		m[it.ProductID] = it
	}
	return State{items: m}
}
