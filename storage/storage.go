package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by [Store.Get] when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is the durable key/value contract the session layer persists
// through. Implementations hold small opaque strings (a token, a serialized
// principal record, a pending redirect path) under caller-chosen keys.
//
// Get returns [ErrNotFound] for a missing key. Delete of a missing key is a
// no-op, not an error. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
