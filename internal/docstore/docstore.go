// Package docstore defines the document database boundary: schemaless JSON
// documents grouped into named collections, addressed by ID.
package docstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a stored document with its raw JSON payload and storage
// timestamps.
type Document struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter is an equality constraint on a top-level document field.
type Filter struct {
	Field string
	Value string
}

// Direction orders query results.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderBy sorts a listing by a document field, or by creation time when
// Field is empty or "createdAt".
type OrderBy struct {
	Field     string
	Direction Direction
}

// Store is the document database client surface. Update applies a partial
// document: only the top-level fields present in the payload are replaced.
type Store interface {
	Add(ctx context.Context, collection string, data any) (string, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string, filters []Filter, order OrderBy) ([]Document, error)
	Update(ctx context.Context, collection, id string, partial any) error
	Delete(ctx context.Context, collection, id string) error

	// Set writes a document under a caller-chosen ID, creating or fully
	// replacing it. Used for fixed-ID documents such as site content.
	Set(ctx context.Context, collection, id string, data any) error
}
