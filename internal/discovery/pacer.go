package discovery

import (
	"sync"
	"time"

	"github.com/helionav/starcharts/pkg/core"
)

// Default per-category notification cooldowns. Major discoveries announce
// immediately; minor and background ones are throttled per id.
const (
	DefaultMinorCooldown      = 10 * time.Second
	DefaultBackgroundCooldown = 30 * time.Second
)

// Cooldowns holds the per-category notification cooldowns.
type Cooldowns struct {
	Major      time.Duration
	Minor      time.Duration
	Background time.Duration
}

// DefaultCooldowns returns the standard pacing policy.
func DefaultCooldowns() Cooldowns {
	return Cooldowns{
		Major:      0,
		Minor:      DefaultMinorCooldown,
		Background: DefaultBackgroundCooldown,
	}
}

// CategoryOf maps an object type to its notification category.
func CategoryOf(t core.ObjectType) core.NotificationLevel {
	switch t {
	case core.TypeStar, core.TypePlanet, core.TypeStation:
		return core.LevelMajor
	case core.TypeMoon, core.TypeBeacon:
		return core.LevelMinor
	default:
		return core.LevelBackground
	}
}

// Pacer decides whether a discovery warrants a HUD notification. It keeps a
// transient per-id ledger of last-shown times and a single burst window that
// suppresses every per-object notification while active. Discoveries
// themselves are never suppressed, only their announcements.
type Pacer struct {
	cooldowns Cooldowns

	mu          sync.Mutex
	ledger      map[string]time.Time
	burstEndsAt time.Time
}

// NewPacer creates a pacer with the given cooldown policy.
func NewPacer(cooldowns Cooldowns) *Pacer {
	return &Pacer{
		cooldowns: cooldowns,
		ledger:    make(map[string]time.Time),
	}
}

// StartBurst opens the burst window until now+window. Used on sector entry
// and for bulk seeds, where announcing every object would flood the HUD.
func (p *Pacer) StartBurst(now time.Time, window time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.burstEndsAt = now.Add(window)
}

// BurstActive reports whether the burst window covers the given instant.
func (p *Pacer) BurstActive(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return now.Before(p.burstEndsAt)
}

// ShouldNotify decides whether the record's discovery is announced at the
// given instant, and on a yes records it in the ledger.
func (p *Pacer) ShouldNotify(rec *core.ObjectRecord, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if now.Before(p.burstEndsAt) {
		return false
	}

	cid := core.CanonicalID(rec.ID)
	cooldown := p.cooldownFor(CategoryOf(rec.Type))
	if last, ok := p.ledger[cid]; ok && now.Sub(last) < cooldown {
		return false
	}

	p.ledger[cid] = now
	return true
}

// Reset clears the ledger and the burst window, for sector unload.
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.ledger)
	p.burstEndsAt = time.Time{}
}

func (p *Pacer) cooldownFor(level core.NotificationLevel) time.Duration {
	switch level {
	case core.LevelMajor:
		return p.cooldowns.Major
	case core.LevelMinor:
		return p.cooldowns.Minor
	default:
		return p.cooldowns.Background
	}
}
