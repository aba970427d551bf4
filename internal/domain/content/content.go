// Package content manages the fixed-ID site content documents edited from
// the admin console.
package content

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/maktabat-alamal/storefront/internal/docstore"
)

// Collection is the document-store collection holding site content.
const Collection = "content"

// Fixed document IDs within the content collection.
const (
	AboutUsID   = "aboutUs"
	ContactUsID = "contactUs"
)

// AboutUs is the "about the store" page content.
type AboutUs struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ContactUs holds the store's contact details.
type ContactUs struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Repository reads and upserts the content documents. Missing documents read
// back as zero values; the admin screen initializes them on first save.
type Repository struct {
	store docstore.Store
}

// NewRepository returns a Repository over the given document store.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// AboutUs returns the about-us content, zero-valued when never saved.
func (r *Repository) AboutUs(ctx context.Context) (AboutUs, error) {
	var about AboutUs
	if err := r.get(ctx, AboutUsID, &about); err != nil {
		return AboutUs{}, err
	}
	return about, nil
}

// SaveAboutUs upserts the about-us content.
func (r *Repository) SaveAboutUs(ctx context.Context, about AboutUs) error {
	if err := r.store.Set(ctx, Collection, AboutUsID, about); err != nil {
		return errors.Wrap(err, "save about us")
	}
	return nil
}

// ContactUs returns the contact details, zero-valued when never saved.
func (r *Repository) ContactUs(ctx context.Context) (ContactUs, error) {
	var contact ContactUs
	if err := r.get(ctx, ContactUsID, &contact); err != nil {
		return ContactUs{}, err
	}
	return contact, nil
}

// SaveContactUs upserts the contact details.
func (r *Repository) SaveContactUs(ctx context.Context, contact ContactUs) error {
	if err := r.store.Set(ctx, Collection, ContactUsID, contact); err != nil {
		return errors.Wrap(err, "save contact us")
	}
	return nil
}

func (r *Repository) get(ctx context.Context, id string, out any) error {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		return errors.Wrapf(err, "get content %q", id)
	}
	if err := json.Unmarshal(doc.Data, out); err != nil {
		return errors.Wrapf(err, "decode content %q", id)
	}
	return nil
}
