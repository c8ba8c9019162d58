// Package session tracks the active sector for the current play session.
package session

import (
	"sync"
	"time"

	"github.com/helionav/starcharts/pkg/core"
)

// Context holds the active sector state. Written by the discovery engine on
// sector changes, read by chart exports and monitoring.
type Context struct {
	mu        sync.RWMutex
	sector    *core.Sector
	starName  string
	enteredAt time.Time
}

// NewContext creates an empty session context.
func NewContext() *Context {
	return &Context{}
}

// Set installs the active sector.
func (c *Context) Set(sector *core.Sector, starName string, enteredAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sector = sector
	c.starName = starName
	c.enteredAt = enteredAt
}

// Get returns the active sector, nil when none is set.
func (c *Context) Get() *core.Sector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sector
}

// SectorID returns the active sector id, empty when none is set.
func (c *Context) SectorID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sector == nil {
		return ""
	}
	return c.sector.ID
}

// StarName returns the display name of the active sector's central star.
func (c *Context) StarName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.starName
}

// EnteredAt returns when the active sector became active.
func (c *Context) EnteredAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enteredAt
}

// Active reports whether a sector is currently set.
func (c *Context) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sector != nil
}

// Clear drops the active sector.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sector = nil
	c.starName = ""
	c.enteredAt = time.Time{}
}
