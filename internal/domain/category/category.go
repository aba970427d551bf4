// Package category holds product category management.
package category

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"

	"github.com/maktabat-alamal/storefront/internal/docstore"
)

// Collection is the document-store collection holding categories.
const Collection = "categories"

// ErrNotFound is returned when a requested category does not exist.
var ErrNotFound = errors.New("category not found")

// Category groups products for browsing. Description is optional.
type Category struct {
	ID          string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Repository persists categories in the document store.
type Repository struct {
	store docstore.Store
}

// NewRepository returns a Repository over the given document store.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Create adds a new category and returns its generated ID.
func (r *Repository) Create(ctx context.Context, c Category) (string, error) {
	id, err := r.store.Add(ctx, Collection, c)
	if err != nil {
		return "", errors.Wrap(err, "add category")
	}
	return id, nil
}

// GetByID returns a category by ID, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*Category, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get category %q", id)
	}
	return decode(doc)
}

// List returns all categories in alphabetical order.
func (r *Repository) List(ctx context.Context) ([]Category, error) {
	docs, err := r.store.List(ctx, Collection, nil, docstore.OrderBy{Field: "name", Direction: docstore.Asc})
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}

	categories := make([]Category, 0, len(docs))
	for i := range docs {
		c, err := decode(&docs[i])
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, nil
}

// Update replaces the name and description of an existing category.
func (r *Repository) Update(ctx context.Context, id, name, description string) error {
	fields := map[string]any{"name": name, "description": description}
	if err := r.store.Update(ctx, Collection, id, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrapf(err, "update category %q", id)
	}
	return nil
}

// Delete removes a category; deleting an absent category is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, Collection, id); err != nil {
		return errors.Wrapf(err, "delete category %q", id)
	}
	return nil
}

func decode(doc *docstore.Document) (*Category, error) {
	var c Category
	if err := json.Unmarshal(doc.Data, &c); err != nil {
		return nil, errors.Wrapf(err, "decode category %q", doc.ID)
	}
	c.ID = doc.ID
	c.CreatedAt = doc.CreatedAt
	c.UpdatedAt = doc.UpdatedAt
	return &c, nil
}
