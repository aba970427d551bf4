// Package product holds the catalog product model and its document-store
// repository.
package product

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Collection is the document-store collection holding products.
const Collection = "products"

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog item. SEO fields are optional and omitted from the
// stored document when empty.
type Product struct {
	ID             string          `json:"-"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
	Category       string          `json:"category"`
	SEOTitle       string          `json:"seoTitle,omitempty"`
	SEODescription string          `json:"seoDescription,omitempty"`
	Images         []string        `json:"images"`
	CreatedAt      time.Time       `json:"-"`
	UpdatedAt      time.Time       `json:"-"`
}

// Patch is a partial product update; nil fields are left untouched.
type Patch struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	Stock          *int
	Category       *string
	SEOTitle       *string
	SEODescription *string
	Images         *[]string
}

// Fields returns the patch as a field map for a partial document update.
func (p Patch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	if p.Stock != nil {
		fields["stock"] = *p.Stock
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.SEOTitle != nil {
		fields["seoTitle"] = *p.SEOTitle
	}
	if p.SEODescription != nil {
		fields["seoDescription"] = *p.SEODescription
	}
	if p.Images != nil {
		fields["images"] = *p.Images
	}
	return fields
}
