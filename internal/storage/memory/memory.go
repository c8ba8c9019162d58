// internal/storage/memory/memory.go
package memory

import (
	"sort"
	"sync"
)

// Backend stores discovery blobs in memory. It backs tests and degraded
// sessions where no database is reachable; contents are lost on exit.
type Backend struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New creates a new memory backend.
func New() *Backend {
	return &Backend{
		blobs: make(map[string][]byte),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// Read returns a copy of the blob stored under key, or nil if the key has
// never been written.
func (b *Backend) Read(key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	blob, ok := b.blobs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// Write stores a copy of the blob under key, replacing any previous value.
func (b *Backend) Write(key string, blob []byte) error {
	stored := make([]byte, len(blob))
	copy(stored, blob)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.blobs[key] = stored
	return nil
}

// Keys returns the sorted list of keys that have been written.
func (b *Backend) Keys() []string {
	b.mu.RLock()
	keys := make([]string, 0, len(b.blobs))
	for k := range b.blobs {
		keys = append(keys, k)
	}
	b.mu.RUnlock()

	sort.Strings(keys)
	return keys
}
