// pkg/core/object.go
package core

import (
	"math"
	"strings"
)

// ObjectType classifies a catalog object.
type ObjectType string

const (
	TypeStar     ObjectType = "star"
	TypePlanet   ObjectType = "planet"
	TypeMoon     ObjectType = "moon"
	TypeStation  ObjectType = "station"
	TypeBeacon   ObjectType = "beacon"
	TypeAsteroid ObjectType = "asteroid"
	TypeDebris   ObjectType = "debris"
	TypeUnknown  ObjectType = "unknown"
)

// Label returns the display form of the type, e.g. "moon" -> "Moon".
func (t ObjectType) Label() string {
	s := string(t)
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Vector3 is a position in sector space, in kilometers.
type Vector3 struct {
	X float64
	Y float64
	Z float64
}

// DistanceTo returns the euclidean distance to another point in km.
func (v Vector3) DistanceTo(o Vector3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vector3
	Max Vector3
}

// ObjectRecord is a single catalog entry. Records are shared by reference
// and immutable after load.
type ObjectRecord struct {
	ID              string
	SectorID        string
	Type            ObjectType
	Position        Vector3
	DisplayName     string
	Faction         string
	TriggerRadiusKm float64
	Meta            map[string]any
}

// Sector is a loaded catalog partition with its ordered object list.
type Sector struct {
	ID      string
	Name    string
	Center  Vector3
	Bounds  Box
	Objects []*ObjectRecord
}

// CanonicalID normalizes an object id for storage and comparison.
// Ids are compared case-insensitively; the canonical form is upper-case
// (sector prefix included), so "a0_europa" and "A0_Europa" both map to
// "A0_EUROPA".
func CanonicalID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// SectorOf returns the sector prefix of an id, e.g. "a0_europa" -> "A0".
// Ids without a sector prefix map to their whole canonical form.
func SectorOf(id string) string {
	cid := CanonicalID(id)
	if i := strings.IndexByte(cid, '_'); i > 0 {
		return cid[:i]
	}
	return cid
}
