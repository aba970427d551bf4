package redisstore

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/maktabat-alamal/storefront/internal/domain/auth"
)

const sessionPrefix = "session:"

// SessionStore keeps live session IDs in Redis with a TTL so sign-out can
// revoke tokens before they expire.
type SessionStore struct {
	client *redis.Client
}

var _ auth.SessionStore = (*SessionStore)(nil)

// NewSessionStore returns a SessionStore over the given client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Put records a session ID for the given account until ttl elapses.
func (s *SessionStore) Put(ctx context.Context, sessionID, accountID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionPrefix+sessionID, accountID, ttl).Err(); err != nil {
		return errors.Wrap(err, "store session")
	}
	return nil
}

// Alive reports whether the session ID is still valid.
func (s *SessionStore) Alive(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionPrefix+sessionID).Result()
	if err != nil {
		return false, errors.Wrap(err, "check session")
	}
	return n > 0, nil
}

// Revoke deletes the session ID. Revoking an absent session is a no-op.
func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionPrefix+sessionID).Err(); err != nil {
		return errors.Wrap(err, "revoke session")
	}
	return nil
}
