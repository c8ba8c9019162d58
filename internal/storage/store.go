// internal/storage/store.go
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/helionav/starcharts/pkg/core"
)

// blobVersion is the only discovery blob layout this build reads.
// Unknown versions are treated as empty, there is no migration.
const blobVersion = 1

// BlobKey returns the persistence key for a sector's discovery blob.
func BlobKey(sectorID string) string {
	return "star_charts_discovery_" + core.CanonicalID(sectorID)
}

// LoadOptions control how a sector's discovery state is seeded.
type LoadOptions struct {
	// DiscoverAll seeds every id of the loaded sector. The caller is
	// responsible for treating the seed as a burst so no per-object
	// notifications fire.
	DiscoverAll bool
}

// Store tracks discovered object ids, one id set per sector, and persists
// each set as a single blob. Every id passed in is canonicalized before
// use, so callers never need to normalize.
type Store struct {
	backend Backend
	log     *slog.Logger

	mu      sync.RWMutex
	sectors map[string]*sectorState

	persistErrors atomic.Uint64
}

type sectorState struct {
	ids    map[string]struct{}
	warned bool
}

func newSectorState() *sectorState {
	return &sectorState{ids: make(map[string]struct{})}
}

// NewStore creates a discovery store over the given backend.
func NewStore(backend Backend, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		backend: backend,
		log:     log,
		sectors: make(map[string]*sectorState),
	}
}

// LoadSector reads the sector's discovery blob and installs its id set.
// A missing, unreadable, corrupted, or unknown-version blob yields an empty
// set with a single warning. An empty set is seeded with the sector's
// central star; with DiscoverAll set, every id in the sector is seeded.
func (s *Store) LoadSector(sector *core.Sector, opts LoadOptions) error {
	if sector == nil {
		return fmt.Errorf("load sector: nil sector")
	}
	sectorID := core.CanonicalID(sector.ID)

	state := newSectorState()

	data, err := s.backend.Read(BlobKey(sectorID))
	switch {
	case err != nil:
		s.persistErrors.Add(1)
		state.warned = true
		s.log.Warn("Discovery state unavailable, starting empty",
			"sector", sectorID, "error", err)
	case len(data) > 0:
		var blob core.DiscoveryState
		if uerr := json.Unmarshal(data, &blob); uerr != nil {
			s.log.Warn("Corrupted discovery blob, starting empty",
				"sector", sectorID, "error", uerr)
		} else if blob.Version != blobVersion {
			s.log.Warn("Unknown discovery blob version, starting empty",
				"sector", sectorID, "version", blob.Version)
		} else {
			for _, id := range blob.IDs {
				state.ids[core.CanonicalID(id)] = struct{}{}
			}
		}
	}

	seeded := false
	if opts.DiscoverAll {
		for _, rec := range sector.Objects {
			cid := core.CanonicalID(rec.ID)
			if _, ok := state.ids[cid]; !ok {
				state.ids[cid] = struct{}{}
				seeded = true
			}
		}
	} else if len(state.ids) == 0 {
		// first run: the sector's central star starts known
		if star := centralStar(sector); star != nil {
			state.ids[core.CanonicalID(star.ID)] = struct{}{}
			seeded = true
		}
	}

	s.mu.Lock()
	s.sectors[sectorID] = state
	s.mu.Unlock()

	if seeded {
		if err := s.persist(sectorID); err != nil {
			s.recordPersistError(sectorID, err)
		}
	}
	return nil
}

// centralStar returns the first star in catalog order, or nil.
func centralStar(sector *core.Sector) *core.ObjectRecord {
	for _, rec := range sector.Objects {
		if rec.Type == core.TypeStar {
			return rec
		}
	}
	return nil
}

// IsDiscovered reports whether the id has been discovered.
func (s *Store) IsDiscovered(id string) bool {
	cid := core.CanonicalID(id)

	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.sectors[core.SectorOf(cid)]
	if state == nil {
		return false
	}
	_, ok := state.ids[cid]
	return ok
}

// MarkDiscovered records the id as discovered. It returns true iff this
// call transitioned the id from undiscovered to discovered. On transition
// the sector blob is written through, best effort.
func (s *Store) MarkDiscovered(id string) bool {
	cid := core.CanonicalID(id)
	sectorID := core.SectorOf(cid)

	s.mu.Lock()
	state := s.sectors[sectorID]
	if state == nil {
		state = newSectorState()
		s.sectors[sectorID] = state
	}
	if _, ok := state.ids[cid]; ok {
		s.mu.Unlock()
		return false
	}
	state.ids[cid] = struct{}{}
	s.mu.Unlock()

	if err := s.persist(sectorID); err != nil {
		s.recordPersistError(sectorID, err)
	}
	return true
}

// All returns a sorted copy of the sector's discovered ids.
func (s *Store) All(sectorID string) []string {
	s.mu.RLock()
	state := s.sectors[core.CanonicalID(sectorID)]
	if state == nil {
		s.mu.RUnlock()
		return nil
	}
	out := make([]string, 0, len(state.ids))
	for id := range state.ids {
		out = append(out, id)
	}
	s.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Count returns the number of discovered ids in the sector.
func (s *Store) Count(sectorID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.sectors[core.CanonicalID(sectorID)]
	if state == nil {
		return 0
	}
	return len(state.ids)
}

// FlushSector persists the sector's current state.
func (s *Store) FlushSector(sectorID string) error {
	if err := s.persist(core.CanonicalID(sectorID)); err != nil {
		s.recordPersistError(core.CanonicalID(sectorID), err)
		return err
	}
	return nil
}

// UnloadSector flushes the sector's state and drops it from memory.
func (s *Store) UnloadSector(sectorID string) error {
	cid := core.CanonicalID(sectorID)
	err := s.FlushSector(cid)

	s.mu.Lock()
	delete(s.sectors, cid)
	s.mu.Unlock()

	return err
}

// PersistErrors returns the number of failed persistence operations.
func (s *Store) PersistErrors() uint64 {
	return s.persistErrors.Load()
}

// persist writes the sector's blob. Nothing is written for unloaded sectors.
func (s *Store) persist(sectorID string) error {
	s.mu.RLock()
	state := s.sectors[sectorID]
	if state == nil {
		s.mu.RUnlock()
		return nil
	}
	blob := core.DiscoveryState{
		Version: blobVersion,
		IDs:     make([]string, 0, len(state.ids)),
	}
	for id := range state.ids {
		blob.IDs = append(blob.IDs, id)
	}
	s.mu.RUnlock()

	sort.Strings(blob.IDs)
	data, err := json.Marshal(blob)
	if err != nil {
		return err
	}

	if err := s.backend.Write(BlobKey(sectorID), data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

// recordPersistError counts the failure and warns once per sector.
func (s *Store) recordPersistError(sectorID string, err error) {
	s.persistErrors.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.sectors[sectorID]
	if state == nil || state.warned {
		return
	}
	state.warned = true
	s.log.Warn("Failed to persist discovery state, will retry on next discovery",
		"sector", sectorID, "error", err)
}
