// Package waypoint keeps the in-memory registry of virtual navigation
// targets. Waypoints share the catalog's id space for target selection but
// never participate in discovery and are never persisted.
package waypoint

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/helionav/starcharts/pkg/core"
)

// ErrInvalidWaypoint marks a rejected waypoint: empty id, duplicate id, or
// an id colliding with a catalog object.
var ErrInvalidWaypoint = errors.New("invalid waypoint")

// CatalogLookup resolves an id against the object database, nil for
// unknown ids. Satisfied by catalog.Database.
type CatalogLookup interface {
	Get(id string) *core.ObjectRecord
}

// Registry stores active virtual waypoints. Single writer (mission/host
// code); the renderer and the target bridge read.
type Registry struct {
	lookup CatalogLookup

	mu    sync.RWMutex
	byID  map[string]*core.Waypoint
	order []string
}

// NewRegistry creates an empty registry. The lookup guards against id
// collisions with the catalog; nil disables that check.
func NewRegistry(lookup CatalogLookup) *Registry {
	return &Registry{
		lookup: lookup,
		byID:   make(map[string]*core.Waypoint),
	}
}

// NewID returns a fresh waypoint id. The uuid suffix keeps generated ids
// out of any catalog's sector-prefixed namespace.
func NewID() string {
	return core.CanonicalID("WP_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// Add registers the waypoint. The id is canonicalized; duplicates and
// catalog collisions are rejected with ErrInvalidWaypoint.
func (r *Registry) Add(wp core.Waypoint) error {
	cid := core.CanonicalID(wp.ID)
	if cid == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidWaypoint)
	}
	if r.lookup != nil && r.lookup.Get(cid) != nil {
		return fmt.Errorf("%w: id %s collides with a catalog object", ErrInvalidWaypoint, cid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[cid]; exists {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidWaypoint, cid)
	}

	wp.ID = cid
	r.byID[cid] = &wp
	r.order = append(r.order, cid)
	return nil
}

// Remove drops the waypoint. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	cid := core.CanonicalID(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[cid]; !exists {
		return
	}
	delete(r.byID, cid)
	for i, existing := range r.order {
		if existing == cid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the waypoint, nil when unknown.
func (r *Registry) Get(id string) *core.Waypoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[core.CanonicalID(id)]
}

// List returns the active waypoints in insertion order.
func (r *Registry) List() []*core.Waypoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*core.Waypoint, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of active waypoints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Clear removes every waypoint, for session end.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.byID)
	r.order = r.order[:0]
}
