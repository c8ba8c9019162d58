// Package target bridges "select object by id" actions to the external
// target computer. The bridge is the only place real catalog objects and
// virtual waypoints meet the computer's contract.
package target

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/helionav/starcharts/internal/waypoint"
	"github.com/helionav/starcharts/pkg/core"
)

// ErrUnknownTarget marks a selection id that resolves to neither a catalog
// object nor an active waypoint.
var ErrUnknownTarget = errors.New("unknown target")

// Computer is the external target computer's contract. The bridge makes at
// most one Set call per selection.
type Computer interface {
	SetTarget(rec *core.ObjectRecord)
	SetVirtualTarget(wp *core.Waypoint)
	ClearTarget()
	CurrentTargetID() string
}

// Resolver resolves an id against the object database. Satisfied by
// catalog.Database.
type Resolver interface {
	Get(id string) *core.ObjectRecord
}

// Dependencies holds all dependencies for the target bridge.
type Dependencies struct {
	Catalog   Resolver
	Waypoints *waypoint.Registry
	Computer  Computer
	Log       *slog.Logger

	// Discover is the auto-discovery hook: selecting or cycling onto a
	// catalog object records it as discovered. Optional; pacing rules
	// apply downstream exactly as for proximity discoveries.
	Discover func(rec *core.ObjectRecord)
}

// Bridge translates id selections into target computer calls. Selections
// are serialized, so the computer holds exactly one active target at a
// time and a new selection atomically replaces the previous one.
type Bridge struct {
	deps Dependencies
	mu   sync.Mutex
}

// NewBridge creates a target bridge.
func NewBridge(deps Dependencies) *Bridge {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Bridge{deps: deps}
}

// SelectByID resolves the id against the catalog first, then the waypoint
// registry, and hands the hit to the computer. Exactly one Set call is made
// on success; on a miss no sink is called and ErrUnknownTarget is returned.
func (b *Bridge) SelectByID(id string) error {
	cid := core.CanonicalID(id)

	b.mu.Lock()
	defer b.mu.Unlock()

	if rec := b.deps.Catalog.Get(cid); rec != nil {
		b.deps.Computer.SetTarget(rec)
		if b.deps.Discover != nil {
			b.deps.Discover(rec)
		}
		b.deps.Log.Debug("Target selected", "id", cid, "type", string(rec.Type))
		return nil
	}

	if b.deps.Waypoints != nil {
		if wp := b.deps.Waypoints.Get(cid); wp != nil {
			b.deps.Computer.SetVirtualTarget(wp)
			b.deps.Log.Debug("Virtual target selected", "id", cid)
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnknownTarget, cid)
}

// ClearVirtual removes the waypoint from the registry and, if it is the
// computer's current target, clears the target first. Always removes;
// clearing an unknown id is a no-op.
func (b *Bridge) ClearVirtual(id string) {
	cid := core.CanonicalID(id)

	b.mu.Lock()
	defer b.mu.Unlock()

	if core.CanonicalID(b.deps.Computer.CurrentTargetID()) == cid {
		b.deps.Computer.ClearTarget()
	}
	if b.deps.Waypoints != nil {
		b.deps.Waypoints.Remove(cid)
	}
}

// CurrentTargetID reads through to the computer, so targets cycled by the
// host outside the bridge are reflected on the next read. Empty when no
// target is active.
func (b *Bridge) CurrentTargetID() string {
	id := b.deps.Computer.CurrentTargetID()
	if id == "" {
		return ""
	}
	return core.CanonicalID(id)
}

// SyncExternal runs the auto-discovery coupling for externally cycled
// targets: when the computer's current target resolves to a catalog record,
// it is recorded as discovered.
func (b *Bridge) SyncExternal() {
	id := b.deps.Computer.CurrentTargetID()
	if id == "" || b.deps.Discover == nil {
		return
	}
	if rec := b.deps.Catalog.Get(id); rec != nil {
		b.deps.Discover(rec)
	}
}
