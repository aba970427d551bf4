package docstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Memory is an in-memory Store for tests and local development. It mirrors
// the Postgres backend's semantics: equality filters compare the stringified
// top-level field, partial updates merge top-level fields.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]*memoryDoc
	now         func() time.Time
}

type memoryDoc struct {
	fields    map[string]json.RawMessage
	createdAt time.Time
	updatedAt time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]*memoryDoc),
		now:         time.Now,
	}
}

func (m *Memory) collection(name string) map[string]*memoryDoc {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]*memoryDoc)
		m.collections[name] = c
	}
	return c
}

func decodeFields(data any) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrap(err, "document must be a JSON object")
	}
	return fields, nil
}

func (m *Memory) Add(_ context.Context, collection string, data any) (string, error) {
	fields, err := decodeFields(data)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	now := m.now()
	m.collection(collection)[id] = &memoryDoc{fields: fields, createdAt: now, updatedAt: now}
	return id, nil
}

func (m *Memory) Set(_ context.Context, collection, id string, data any) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collection(collection)
	now := m.now()
	if existing, ok := c[id]; ok {
		existing.fields = fields
		existing.updatedAt = now
		return nil
	}
	c[id] = &memoryDoc{fields: fields, createdAt: now, updatedAt: now}
	return nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.collection(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return exportDoc(id, doc)
}

func (m *Memory) List(_ context.Context, collection string, filters []Filter, order OrderBy) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type keyed struct {
		id  string
		doc *memoryDoc
	}
	var matched []keyed
	for id, doc := range m.collection(collection) {
		ok := true
		for _, f := range filters {
			if fieldText(doc.fields[f.Field]) != f.Value {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, keyed{id: id, doc: doc})
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch order.Field {
		case "", "createdAt":
			less = matched[i].doc.createdAt.Before(matched[j].doc.createdAt)
			if matched[i].doc.createdAt.Equal(matched[j].doc.createdAt) {
				less = matched[i].id < matched[j].id
			}
		default:
			less = fieldText(matched[i].doc.fields[order.Field]) < fieldText(matched[j].doc.fields[order.Field])
		}
		if order.Direction == Desc {
			return !less
		}
		return less
	})

	docs := make([]Document, 0, len(matched))
	for _, k := range matched {
		doc, err := exportDoc(k.id, k.doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (m *Memory) Update(_ context.Context, collection, id string, partial any) error {
	fields, err := decodeFields(partial)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.collection(collection)[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		doc.fields[k] = v
	}
	doc.updatedAt = m.now()
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collection(collection), id)
	return nil
}

func exportDoc(id string, doc *memoryDoc) (*Document, error) {
	data, err := json.Marshal(doc.fields)
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	return &Document{
		ID:        id,
		Data:      data,
		CreatedAt: doc.createdAt,
		UpdatedAt: doc.updatedAt,
	}, nil
}

// fieldText mirrors Postgres's data->>field: the text form of the value, or
// "" for an absent field.
func fieldText(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
