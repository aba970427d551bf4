package product

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-faster/errors"

	"github.com/maktabat-alamal/storefront/internal/docstore"
)

// ListQuery narrows a product listing. An empty or "all" category matches
// every category. Search is matched case-insensitively against name and
// description after the documents are fetched, mirroring the storefront's
// client-side filtering.
type ListQuery struct {
	Category string
	Search   string
}

// Repository persists products in the document store.
type Repository struct {
	store docstore.Store
}

// NewRepository returns a Repository over the given document store.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Create adds a new product and returns its generated ID.
func (r *Repository) Create(ctx context.Context, p Product) (string, error) {
	id, err := r.store.Add(ctx, Collection, p)
	if err != nil {
		return "", errors.Wrap(err, "add product")
	}
	return id, nil
}

// GetByID returns a product by ID, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*Product, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %q", id)
	}
	return decode(doc)
}

// List returns products newest first, optionally narrowed by query.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]Product, error) {
	var filters []docstore.Filter
	if q.Category != "" && q.Category != "all" {
		filters = append(filters, docstore.Filter{Field: "category", Value: q.Category})
	}

	docs, err := r.store.List(ctx, Collection, filters, docstore.OrderBy{Field: "createdAt", Direction: docstore.Desc})
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	products := make([]Product, 0, len(docs))
	term := strings.ToLower(q.Search)
	for i := range docs {
		p, err := decode(&docs[i])
		if err != nil {
			return nil, err
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		products = append(products, *p)
	}
	return products, nil
}

// Update applies a partial update. Updating an absent product returns
// ErrNotFound.
func (r *Repository) Update(ctx context.Context, id string, patch Patch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	if err := r.store.Update(ctx, Collection, id, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrapf(err, "update product %q", id)
	}
	return nil
}

// SetStock sets the absolute stock level of a product.
func (r *Repository) SetStock(ctx context.Context, id string, stock int) error {
	return r.Update(ctx, id, Patch{Stock: &stock})
}

// Delete removes a product; deleting an absent product is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return errors.Wrapf(err, "delete product %q", id)
	}
	return nil
}

func decode(doc *docstore.Document) (*Product, error) {
	var p Product
	if err := json.Unmarshal(doc.Data, &p); err != nil {
		return nil, errors.Wrapf(err, "decode product %q", doc.ID)
	}
	p.ID = doc.ID
	p.CreatedAt = doc.CreatedAt
	p.UpdatedAt = doc.UpdatedAt
	return &p, nil
}
