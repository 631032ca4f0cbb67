// Package storage persists wallet contents. The wallet.Store backends here
// cover memory, key-value databases (in-memory or Badger), plain or
// passphrase-sealed files, Redis and PostgreSQL.
package storage

import "errors"

// ErrNotFound is returned by DB.Get for a missing key.
var ErrNotFound = errors.New("key not found")

// DB is the interface for key-value storage.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix in key order.
	// The callback receives a copy of the key and value.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}
