// Package redisstore provides Redis-backed cart slots and session storage.
package redisstore

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/maktabat-alamal/storefront/internal/cart"
)

// NewClient creates a go-redis client from a redis:// URL.
func NewClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis URL")
	}
	return redis.NewClient(opts), nil
}

// SlotFactory scopes cart slots under the cart namespace.
type SlotFactory struct {
	client *redis.Client
}

var _ cart.SlotFactory = (*SlotFactory)(nil)

// NewSlotFactory returns a SlotFactory over the given client.
func NewSlotFactory(client *redis.Client) *SlotFactory {
	return &SlotFactory{client: client}
}

// Slot returns the slot for a cart ID, keyed <namespace>:<cartID>.
func (f *SlotFactory) Slot(cartID string) cart.Slot {
	return &slot{client: f.client, key: cart.Namespace + ":" + cartID}
}

type slot struct {
	client *redis.Client
	key    string
}

func (s *slot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "load slot %s", s.key)
	}
	return data, nil
}

func (s *slot) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "save slot %s", s.key)
	}
	return nil
}
