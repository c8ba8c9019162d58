// Package spatial indexes sector objects in fixed-size cubic cells for
// O(1) average case proximity lookups.
package spatial

import (
	"math"
	"sort"

	"github.com/helionav/starcharts/pkg/core"
)

// DefaultCellKm is the edge length of each grid cell in kilometers.
// Sized so the common discovery radius (10-150 km) touches at most
// 3x3x3 to 7x7x7 cells, keeping candidate sets small.
const DefaultCellKm = 50.0

type cellKey struct {
	X, Y, Z int
}

// Grid is a spatial hash over one sector's objects. Objects are static, so
// there is no removal; the grid is rebuilt on sector change. The grid is
// owned by the discovery engine's tick loop and is not safe for concurrent
// mutation.
type Grid struct {
	cellKm  float64
	cells   map[cellKey][]int
	records []*core.ObjectRecord
}

// New creates an empty grid. A zero or negative cell size falls back to
// DefaultCellKm.
func New(cellKm float64) *Grid {
	if cellKm <= 0 {
		cellKm = DefaultCellKm
	}
	return &Grid{
		cellKm: cellKm,
		cells:  make(map[cellKey][]int),
	}
}

// BuildFor clears the grid and inserts every object of the sector into the
// cell containing its position.
func (g *Grid) BuildFor(sector *core.Sector) {
	g.Clear()
	if sector == nil {
		return
	}
	g.records = sector.Objects
	for i, rec := range sector.Objects {
		key := g.cellOf(rec.Position)
		g.cells[key] = append(g.cells[key], i)
	}
}

// Clear resets the grid for the next sector.
func (g *Grid) Clear() {
	clear(g.cells)
	g.records = nil
}

// Len returns the number of indexed objects.
func (g *Grid) Len() int {
	return len(g.records)
}

// cellOf returns the cell containing a position. Floor keeps negative
// coordinates in their own cells.
func (g *Grid) cellOf(p core.Vector3) cellKey {
	return cellKey{
		X: int(math.Floor(p.X / g.cellKm)),
		Y: int(math.Floor(p.Y / g.cellKm)),
		Z: int(math.Floor(p.Z / g.cellKm)),
	}
}

// Neighborhood returns all records whose cell overlaps the axis-aligned
// bounding box of the query sphere, in catalog order. The caller must still
// perform exact distance checks.
func (g *Grid) Neighborhood(p core.Vector3, radiusKm float64) []*core.ObjectRecord {
	if radiusKm < 0 || len(g.records) == 0 {
		return nil
	}

	min := g.cellOf(core.Vector3{X: p.X - radiusKm, Y: p.Y - radiusKm, Z: p.Z - radiusKm})
	max := g.cellOf(core.Vector3{X: p.X + radiusKm, Y: p.Y + radiusKm, Z: p.Z + radiusKm})

	var indices []int
	for x := min.X; x <= max.X; x++ {
		for y := min.Y; y <= max.Y; y++ {
			for z := min.Z; z <= max.Z; z++ {
				indices = append(indices, g.cells[cellKey{X: x, Y: y, Z: z}]...)
			}
		}
	}
	if len(indices) == 0 {
		return nil
	}

	// each object lives in exactly one cell, so sorting the catalog
	// indices restores catalog order without deduplication
	sort.Ints(indices)

	out := make([]*core.ObjectRecord, len(indices))
	for i, idx := range indices {
		out[i] = g.records[idx]
	}
	return out
}
