// Package kvstore defines the persistent key-value contract the cart and
// order records live behind, plus its sqlite, redis and in-memory backends.
// Values are UTF-8 JSON text; interpretation is left to the store layer.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyExists is returned by SetIfAbsent when the key is already present.
var ErrKeyExists = errors.New("kvstore: key already exists")

// Store is the persistence contract. Get reports absence through its second
// return value rather than an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetIfAbsent writes only when the key does not exist yet; it returns
	// ErrKeyExists otherwise. Used to enforce order-id uniqueness through
	// the key space.
	SetIfAbsent(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
