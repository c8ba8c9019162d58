package discovery

import "github.com/helionav/starcharts/pkg/core"

// HostServices is the injected record of host capabilities the engine reads
// each tick. The core never reaches into process-wide state; everything it
// needs from the game host comes through here.
type HostServices interface {
	// PlayerPosition returns the ship position in sector kilometers.
	// ok is false when the player entity is unavailable.
	PlayerPosition() (pos core.Vector3, ok bool)

	// CameraPosition is the fallback position source when the player
	// entity is unavailable.
	CameraPosition() (pos core.Vector3, ok bool)

	// TargetingRangeKm is the discovery radius from the targeting gear.
	// ok is false when no gear range can be queried; the engine then uses
	// its configured default.
	TargetingRangeKm() (km float64, ok bool)
}

// AudioSink plays the discovery cue. Best effort; a missing sink is not an
// error.
type AudioSink interface {
	PlayDiscoveryCue()
}
