// Package kvstore defines the key-value contract the transfer bridge writes
// through, with in-memory and directory-backed implementations.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set or has been
// deleted.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a minimal byte-oriented key-value surface. Implementations must
// treat values as opaque and must copy them on the way in and out.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
