package auth

import (
	"context"
	"sync"
	"time"
)

// MemorySessions is an in-process SessionStore. Sessions do not survive a
// restart, which is acceptable for single-node deployments without Redis.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	accountID string
	expiresAt time.Time
}

// NewMemorySessions creates an empty in-process session store.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]memorySession)}
}

func (m *MemorySessions) Put(_ context.Context, sessionID, accountID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = memorySession{
		accountID: accountID,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *MemorySessions) Alive(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if time.Now().After(s.expiresAt) {
		delete(m.sessions, sessionID)
		return false, nil
	}
	return true, nil
}

func (m *MemorySessions) Revoke(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
