package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maktabat-alamal/storefront/internal/docstore"
)

var _ docstore.Store = (*DocumentStore)(nil)

// DocumentStore implements docstore.Store over a single JSONB documents
// table. Collections are rows sharing a collection name; partial updates use
// the JSONB concatenation operator.
type DocumentStore struct {
	pool *pgxpool.Pool
}

// NewDocumentStore returns a DocumentStore using the given pool.
func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

// Add inserts data as a new document under a generated UUID and returns the ID.
func (s *DocumentStore) Add(ctx context.Context, collection string, data any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", errors.Wrap(err, "encode document")
	}

	id := uuid.New().String()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, payload)
	if err != nil {
		return "", errors.Wrapf(err, "insert into %s", collection)
	}
	return id, nil
}

// Set creates or fully replaces the document with the given ID.
func (s *DocumentStore) Set(ctx context.Context, collection, id string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encode document")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id)
		 DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, id, payload)
	if err != nil {
		return errors.Wrapf(err, "set %s/%s", collection, id)
	}
	return nil
}

// Get returns the document with the given ID, or docstore.ErrNotFound.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	var doc docstore.Document
	doc.ID = id
	err := s.pool.QueryRow(ctx,
		`SELECT data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&doc.Data, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get %s/%s", collection, id)
	}
	return &doc, nil
}

// List returns documents matching all filters, sorted per order. Filter
// fields come from repository code, never from request input; only values
// are parameterized.
func (s *DocumentStore) List(ctx context.Context, collection string, filters []docstore.Filter, order docstore.OrderBy) ([]docstore.Document, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1`)
	args := []any{collection}
	for _, f := range filters {
		args = append(args, f.Value)
		fmt.Fprintf(&sb, ` AND data->>'%s' = $%d`, f.Field, len(args))
	}
	sb.WriteString(orderClause(order))

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", collection)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var doc docstore.Document
		if err := rows.Scan(&doc.ID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan document")
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Update merges the top-level fields of partial into the stored document.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, partial any) error {
	payload, err := json.Marshal(partial)
	if err != nil {
		return errors.Wrap(err, "encode partial document")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = data || $3, updated_at = now()
		 WHERE collection = $1 AND id = $2`,
		collection, id, payload)
	if err != nil {
		return errors.Wrapf(err, "update %s/%s", collection, id)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Delete removes the document if present; deleting an absent document is not
// an error.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return errors.Wrapf(err, "delete %s/%s", collection, id)
	}
	return nil
}

func orderClause(order docstore.OrderBy) string {
	dir := "ASC"
	if order.Direction == docstore.Desc {
		dir = "DESC"
	}
	switch order.Field {
	case "", "createdAt":
		return " ORDER BY created_at " + dir
	default:
		return fmt.Sprintf(" ORDER BY data->>'%s' %s", order.Field, dir)
	}
}
