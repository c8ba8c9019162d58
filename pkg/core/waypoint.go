// pkg/core/waypoint.go
package core

// Waypoint is a synthetic navigation target. Waypoints live outside the
// catalog id space, are addressable like catalog objects, and are never
// persisted.
type Waypoint struct {
	ID              string
	Position        Vector3
	DisplayName     string
	MissionID       string
	TriggerRadiusKm float64
}
