package storage

import "errors"

// ErrNotFound is returned by Get when no entry exists for a key.
var ErrNotFound = errors.New("storage entry not found")

// Provider is a persistent key-value store holding serialized snapshots.
// Values are opaque JSON documents written whole on every Put.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Entries
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Keys() ([]string, error)

	// Utils
	GetConfigPath() string
}
