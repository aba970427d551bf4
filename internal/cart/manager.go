package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotFactory yields the storage slot for a given cart ID. Implementations
// scope each cart under the fixed Namespace key.
type SlotFactory interface {
	Slot(cartID string) Slot
}

// Manager hands out one Store per cart ID. A cart that has never been
// written rehydrates as empty, matching the first-load behaviour of the
// persisted slot.
type Manager struct {
	slots SlotFactory
	lg    *zap.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a Manager backed by the given slot factory.
func NewManager(slots SlotFactory, lg *zap.Logger) *Manager {
	return &Manager{
		slots:  slots,
		lg:     lg,
		stores: make(map[string]*Store),
	}
}

// Create issues a fresh cart ID with an empty store.
func (m *Manager) Create(ctx context.Context) (string, *Store, error) {
	id := uuid.New().String()
	store, err := m.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return id, store, nil
}

// Get returns the store for the given cart ID, rehydrating it from its slot
// on first access.
func (m *Manager) Get(ctx context.Context, cartID string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[cartID]; ok {
		return store, nil
	}
	store, err := NewStore(ctx, m.slots.Slot(cartID), m.lg)
	if err != nil {
		return nil, err
	}
	m.stores[cartID] = store
	return store, nil
}
