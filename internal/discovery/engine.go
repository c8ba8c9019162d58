// Package discovery runs the periodic proximity sweep that turns catalog
// objects into discovered map entries, and paces the resulting HUD
// notifications. The engine is driven by the host's render loop through
// Tick; it never blocks and never lets a failure escape a tick.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/helionav/starcharts/internal/catalog"
	"github.com/helionav/starcharts/internal/dispatch"
	"github.com/helionav/starcharts/internal/queue"
	"github.com/helionav/starcharts/internal/session"
	"github.com/helionav/starcharts/internal/spatial"
	"github.com/helionav/starcharts/internal/storage"
	"github.com/helionav/starcharts/internal/telemetry"
	"github.com/helionav/starcharts/pkg/core"
)

// Default engine timing.
const (
	DefaultCheckInterval   = 500 * time.Millisecond
	DefaultMaxPerTick      = 5
	DefaultBurstWindow     = 10 * time.Second
	DefaultRadiusKm        = 50.0
	influxDiscoveryBucket  = "discovery_events"
	influxEngineTickBucket = "engine_ticks"
)

// Config holds the discovery engine knobs.
type Config struct {
	CheckInterval   time.Duration
	MaxPerTick      int
	BurstWindow     time.Duration
	CellKm          float64
	DefaultRadiusKm float64
	DiscoverAll     bool
	Cooldowns       Cooldowns
}

func (c *Config) withDefaults() {
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultCheckInterval
	}
	if c.MaxPerTick <= 0 {
		c.MaxPerTick = DefaultMaxPerTick
	}
	if c.BurstWindow <= 0 {
		c.BurstWindow = DefaultBurstWindow
	}
	if c.CellKm <= 0 {
		c.CellKm = spatial.DefaultCellKm
	}
	if c.DefaultRadiusKm <= 0 {
		c.DefaultRadiusKm = DefaultRadiusKm
	}
}

// Dependencies holds all dependencies for the discovery engine.
type Dependencies struct {
	Catalog *catalog.Database
	Store   *storage.Store
	Host    HostServices
	Events  *dispatch.Dispatcher
	Session *session.Context
	Log     *slog.Logger

	// Audio is optional; a nil sink skips the cue.
	Audio AudioSink
	// Influx is optional discovery telemetry, best effort.
	Influx *telemetry.InfluxManager
}

// Engine is the proximity discovery sweep. Single writer of the discovery
// store (the target bridge's auto-discovery path goes through Discover,
// which sequences through the same store check).
type Engine struct {
	deps  Dependencies
	cfg   Config
	pacer *Pacer

	mu          sync.Mutex
	sector      *core.Sector
	grid        *spatial.Grid
	pending     *queue.Queue[string]
	queued      map[string]struct{}
	lastCheckAt time.Time

	ticksRun     uint64
	ticksSkipped uint64
	discovered   uint64
	notified     uint64
	desyncSkips  uint64
	desyncLogged bool

	// OTEL metrics
	queueDepth    metric.Int64ObservableGauge
	discoveries   metric.Int64Counter
	notifications metric.Int64Counter
	desyncs       metric.Int64Counter
}

// New creates a discovery engine. Uses the global OTel meter for metrics
// (no-op if not configured).
func New(deps Dependencies, cfg Config) (*Engine, error) {
	cfg.withDefaults()
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	e := &Engine{
		deps:    deps,
		cfg:     cfg,
		pacer:   NewPacer(cfg.Cooldowns),
		pending: queue.New[string](),
		queued:  make(map[string]struct{}),
	}

	m := meter()

	var err error

	e.queueDepth, err = m.Int64ObservableGauge(
		"discovery.queue.depth",
		metric.WithDescription("Objects awaiting discovery processing"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue depth gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(e.queueDepth, int64(e.pending.Len()))
			return nil
		},
		e.queueDepth,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue depth callback: %w", err)
	}

	e.discoveries, err = m.Int64Counter(
		"discovery.objects.discovered",
		metric.WithDescription("Total objects discovered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating discoveries counter: %w", err)
	}

	e.notifications, err = m.Int64Counter(
		"discovery.notifications.emitted",
		metric.WithDescription("Total discovery notifications emitted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating notifications counter: %w", err)
	}

	e.desyncs, err = m.Int64Counter(
		"discovery.index.desyncs",
		metric.WithDescription("Spatial index ids with no catalog record"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating desync counter: %w", err)
	}

	return e, nil
}

// ActivateSector makes the sector the active discovery target. Persisted
// discovery state is loaded (seeding the central star on first run, or every
// object under DiscoverAll), the pending queue is reset, and the spatial
// grid is rebuilt lazily on the first tick. A DiscoverAll seed counts as a
// burst so the seed announces nothing.
func (e *Engine) ActivateSector(sector *core.Sector, now time.Time) error {
	if sector == nil {
		return fmt.Errorf("activate sector: nil sector")
	}

	err := e.deps.Store.LoadSector(sector, storage.LoadOptions{DiscoverAll: e.cfg.DiscoverAll})
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.sector = sector
	e.grid = nil
	e.pending.Clear()
	clear(e.queued)
	e.lastCheckAt = time.Time{}
	e.mu.Unlock()

	if e.cfg.DiscoverAll {
		e.pacer.StartBurst(now, e.cfg.BurstWindow)
	}

	if e.deps.Session != nil {
		starName := sector.Name
		if star := centralStar(sector); star != nil {
			starName = star.DisplayName
		}
		e.deps.Session.Set(sector, starName, now)
	}

	e.deps.Log.Info("Sector activated",
		"sector", sector.ID,
		"objects", len(sector.Objects),
		"known", e.deps.Store.Count(sector.ID))
	return nil
}

// DeactivateSector flushes the sector's discovery state and drops the
// pending queue, the burst window, and the spatial grid. Queued objects are
// abandoned without partial notifications.
func (e *Engine) DeactivateSector() error {
	e.mu.Lock()
	sector := e.sector
	e.sector = nil
	if e.grid != nil {
		e.grid.Clear()
		e.grid = nil
	}
	e.pending.Clear()
	clear(e.queued)
	e.mu.Unlock()

	e.pacer.Reset()
	if e.deps.Session != nil {
		e.deps.Session.Clear()
	}

	if sector == nil {
		return nil
	}
	return e.deps.Store.UnloadSector(sector.ID)
}

// OnSectorEntered starts the burst window and announces the system itself.
// The single top-level notification bypasses the pacer; every per-object
// notification is suppressed until the window expires.
func (e *Engine) OnSectorEntered(sectorID, starName string, now time.Time) {
	e.pacer.StartBurst(now, e.cfg.BurstWindow)

	e.deps.Events.Publish(dispatch.Event{
		Name:      dispatch.EventSectorEntered,
		Payload:   core.CanonicalID(sectorID),
		Timestamp: now,
	})
	e.deps.Events.Publish(dispatch.Event{
		Name: dispatch.EventNotification,
		Payload: core.Notification{
			Title:   fmt.Sprintf("Discovered %s System", starName),
			Message: fmt.Sprintf("Entering the %s system", starName),
			Level:   core.LevelMajor,
		},
		Timestamp: now,
	})
	if e.deps.Audio != nil {
		e.deps.Audio.PlayDiscoveryCue()
	}

	e.deps.Log.Info("Sector entered", "sector", sectorID, "star", starName)
}

// Tick runs one discovery sweep. The sweep rate-limits itself to the check
// interval; callers may invoke it every frame. A tick with no usable
// position is skipped softly. Failures are counted, never raised.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sector == nil {
		return
	}
	if !e.lastCheckAt.IsZero() && now.Sub(e.lastCheckAt) < e.cfg.CheckInterval {
		return
	}
	e.lastCheckAt = now

	pos, ok := e.deps.Host.PlayerPosition()
	if !ok {
		pos, ok = e.deps.Host.CameraPosition()
	}
	if !ok {
		e.ticksSkipped++
		return
	}

	radius, ok := e.deps.Host.TargetingRangeKm()
	if !ok || radius <= 0 {
		radius = e.cfg.DefaultRadiusKm
	}

	if e.grid == nil {
		e.grid = spatial.New(e.cfg.CellKm)
		e.grid.BuildFor(e.sector)
	}

	scanned := 0
	for _, rec := range e.grid.Neighborhood(pos, radius) {
		scanned++
		if rec.Position.DistanceTo(pos) > radius {
			continue
		}
		if e.deps.Store.IsDiscovered(rec.ID) {
			continue
		}
		if _, queued := e.queued[rec.ID]; queued {
			continue
		}
		e.queued[rec.ID] = struct{}{}
		e.pending.Push(rec.ID)
	}

	// Notifications are suppressed during the burst window, so the
	// per-tick cap that paces them has nothing to pace: drain the whole
	// queue and get the sector on the map at once.
	limit := e.cfg.MaxPerTick
	if e.pacer.BurstActive(now) {
		limit = e.pending.Len()
	}

	processed := 0
	notified := 0
	for _, id := range e.pending.PopUpTo(limit) {
		delete(e.queued, id)

		rec := e.deps.Catalog.Get(id)
		if rec == nil {
			e.recordDesync(id)
			continue
		}
		newly, announced := e.process(rec, now)
		if newly {
			processed++
		}
		if announced {
			notified++
		}
	}

	e.ticksRun++

	if e.deps.Influx != nil && scanned+processed > 0 {
		point := telemetry.EngineTickPoint(
			e.sector.ID, scanned, processed, notified, e.pending.Len(), now)
		_ = e.deps.Influx.WritePoint(context.Background(), influxEngineTickBucket, point)
	}
}

// Discover records the object as discovered outside the proximity sweep,
// for the target bridge's auto-discovery path. Pacing rules apply exactly
// as for proximity discoveries. Returns true iff the object was newly
// discovered.
func (e *Engine) Discover(rec *core.ObjectRecord, now time.Time) bool {
	if rec == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	newly, _ := e.process(rec, now)
	return newly
}

// process transitions one record to discovered and emits its events, in the
// fixed order markDiscovered, discovery event, optional notification.
// Callers hold e.mu.
func (e *Engine) process(rec *core.ObjectRecord, now time.Time) (newly, announced bool) {
	if !e.deps.Store.MarkDiscovered(rec.ID) {
		return false, false
	}

	e.discovered++
	e.discoveries.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("type", string(rec.Type))))

	e.deps.Events.Publish(dispatch.Event{
		Name:      dispatch.EventDiscovery,
		Payload:   core.CanonicalID(rec.ID),
		Timestamp: now,
	})

	if e.deps.Influx != nil {
		point := telemetry.DiscoveryPoint(
			rec.SectorID, rec.ID, string(rec.Type), e.pacer.BurstActive(now), now)
		_ = e.deps.Influx.WritePoint(context.Background(), influxDiscoveryBucket, point)
	}

	if !e.pacer.ShouldNotify(rec, now) {
		return true, false
	}

	level := CategoryOf(rec.Type)
	e.notified++
	e.notifications.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("level", string(level))))

	e.deps.Events.Publish(dispatch.Event{
		Name: dispatch.EventNotification,
		Payload: core.Notification{
			Title:   fmt.Sprintf("%s Discovered", rec.Type.Label()),
			Message: rec.DisplayName,
			Level:   level,
		},
		Timestamp: now,
	})
	if e.deps.Audio != nil {
		e.deps.Audio.PlayDiscoveryCue()
	}
	return true, true
}

// recordDesync counts a spatial index id with no catalog record. Logged
// once per session; after that only the counter moves. Callers hold e.mu.
func (e *Engine) recordDesync(id string) {
	e.desyncSkips++
	e.desyncs.Add(context.Background(), 1)
	if !e.desyncLogged {
		e.desyncLogged = true
		e.deps.Log.Warn("Spatial index returned id with no catalog record, skipping",
			"id", id)
	}
}

// Status returns a point-in-time snapshot of the engine. BurstActive is
// evaluated as of the last sweep.
func (e *Engine) Status() core.EngineStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := core.EngineStatus{
		LastTickAt:    e.lastCheckAt,
		TicksRun:      e.ticksRun,
		TicksSkipped:  e.ticksSkipped,
		Discovered:    e.discovered,
		Notified:      e.notified,
		PersistErrors: e.deps.Store.PersistErrors(),
		DesyncSkips:   e.desyncSkips,
		QueueDepth:    e.pending.Len(),
		BurstActive:   e.pacer.BurstActive(e.lastCheckAt),
	}
	if e.sector != nil {
		st.ActiveSector = e.sector.ID
	}
	return st
}

func centralStar(sector *core.Sector) *core.ObjectRecord {
	for _, rec := range sector.Objects {
		if rec.Type == core.TypeStar {
			return rec
		}
	}
	return nil
}
