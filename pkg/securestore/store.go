// Package securestore provides the key-value storage backends the session
// manager persists credentials into. Hosts embedding the library can supply
// their own Backend (e.g. an OS keychain bridge); the package ships an
// in-memory backend, a SQLite-backed one, and an encrypting wrapper.
package securestore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("securestore: not found")

// Backend is a namespaced key-value store for opaque secret blobs.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the value for key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error

	Close() error
}
