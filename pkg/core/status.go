// pkg/core/status.go
package core

import "time"

// EngineStatus is a point-in-time snapshot of the discovery engine.
// Failures inside a tick never escape it; they are counted here instead.
type EngineStatus struct {
	ActiveSector  string
	LastTickAt    time.Time
	TicksRun      uint64
	TicksSkipped  uint64
	Discovered    uint64
	Notified      uint64
	PersistErrors uint64
	DesyncSkips   uint64
	QueueDepth    int
	BurstActive   bool
}

// NavState is the payload of a navigation mode change event.
type NavState struct {
	Active string
}

// NavStatus is a snapshot of the navigation supervisor.
type NavStatus struct {
	Mode            string
	Active          string
	IsOpen          bool
	MissedTicks     int
	LastHealthCheck time.Time
}
