// Package catalog loads and serves the static object database. Records are
// immutable after load and shared by reference; no caller may mutate them.
package catalog

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/helionav/starcharts/pkg/core"
)

// ErrDatabaseUnavailable marks a sector catalog that cannot be served,
// either missing from the source directory or schema-invalid.
var ErrDatabaseUnavailable = errors.New("object database unavailable")

// Database serves immutable object records from a JSON source directory.
// Sectors are loaded once and cached until unloaded.
type Database struct {
	dir string
	log *slog.Logger

	mu      sync.RWMutex
	sectors map[string]*core.Sector
	objects map[string]*core.ObjectRecord
}

// New creates a Database over a source directory of sector files.
func New(dir string, log *slog.Logger) *Database {
	if log == nil {
		log = slog.Default()
	}
	return &Database{
		dir:     dir,
		log:     log,
		sectors: make(map[string]*core.Sector),
		objects: make(map[string]*core.ObjectRecord),
	}
}

// Load reads, validates, and caches the sector catalog. Loading a cached
// sector returns the cached instance; there are no side effects beyond the
// cache fill.
func (d *Database) Load(sectorID string) (*core.Sector, error) {
	cid := core.CanonicalID(sectorID)

	d.mu.RLock()
	sector, ok := d.sectors[cid]
	d.mu.RUnlock()
	if ok {
		return sector, nil
	}

	sector, err := d.readSectorFile(cid)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if cached, ok := d.sectors[cid]; ok {
		// lost a concurrent load, serve the one already cached
		return cached, nil
	}
	d.sectors[cid] = sector
	for _, rec := range sector.Objects {
		d.objects[rec.ID] = rec
	}

	d.log.Info("Sector catalog loaded",
		"sector", cid,
		"objects", len(sector.Objects))
	return sector, nil
}

// Get returns the record for the id, or nil when unknown. Lookups span all
// loaded sectors.
func (d *Database) Get(id string) *core.ObjectRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.objects[core.CanonicalID(id)]
}

// ListSector returns the sector's records in catalog order, nil when the
// sector is not loaded. The returned slice is shared, callers must not
// modify it.
func (d *Database) ListSector(sectorID string) []*core.ObjectRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sector := d.sectors[core.CanonicalID(sectorID)]
	if sector == nil {
		return nil
	}
	return sector.Objects
}

// CentralStar returns the first star of the sector in catalog order, or nil.
func (d *Database) CentralStar(sectorID string) *core.ObjectRecord {
	for _, rec := range d.ListSector(sectorID) {
		if rec.Type == core.TypeStar {
			return rec
		}
	}
	return nil
}

// Unload drops the cached sector and its record index entries.
func (d *Database) Unload(sectorID string) {
	cid := core.CanonicalID(sectorID)

	d.mu.Lock()
	defer d.mu.Unlock()
	sector := d.sectors[cid]
	if sector == nil {
		return
	}
	for _, rec := range sector.Objects {
		delete(d.objects, rec.ID)
	}
	delete(d.sectors, cid)
}
