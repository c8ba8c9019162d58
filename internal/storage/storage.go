// internal/storage/storage.go
package storage

import (
	"errors"
	"time"
)

// ErrPersistenceUnavailable marks read/write failures of the persistence
// layer. The store recovers locally: loads begin empty, writes are retried
// on the next discovery.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

// Backend is the interface all persistence implementations must satisfy.
// Keys are opaque blob names; a Read of a key that was never written
// returns (nil, nil).
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Blob persistence
	Read(key string) ([]byte, error)
	Write(key string, blob []byte) error
}

// WriteTimed is an optional interface for backends that track how long the
// most recent write took, for status reporting.
type WriteTimed interface {
	LastWriteDuration() time.Duration
}
