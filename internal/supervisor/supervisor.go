// Package supervisor chooses between the discovery-aware star charts and
// the fallback long-range scanner at runtime. Startup failures and
// persistent engine stalls both land on the scanner; the host keeps a
// single open/close toggle either way.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/helionav/starcharts/internal/clock"
	"github.com/helionav/starcharts/internal/dispatch"
	"github.com/helionav/starcharts/internal/telemetry"
	"github.com/helionav/starcharts/pkg/core"
)

// Mode is a navigation supervisor state.
type Mode string

const (
	ModeInitializing Mode = "initializing"
	ModeStarCharts   Mode = "star_charts"
	ModeScanner      Mode = "long_range_scanner"
	ModeDegraded     Mode = "degraded"
)

// Active panel names reported to the host.
const (
	ActiveCharts  = "charts"
	ActiveScanner = "scanner"
)

// Default timing.
const (
	DefaultDBInitTimeout   = 100 * time.Millisecond
	DefaultInitTimeout     = 500 * time.Millisecond
	DefaultHealthInterval  = 30 * time.Second
	DefaultMissedTickLimit = 5
)

// allowedTransitions is the supervisor state machine. The scanner is
// terminal; recovery back to charts needs a restart.
var allowedTransitions = map[Mode][]Mode{
	ModeInitializing: {ModeStarCharts, ModeScanner},
	ModeStarCharts:   {ModeDegraded, ModeScanner},
	ModeDegraded:     {ModeScanner},
	ModeScanner:      {},
}

// Panel is a navigation surface the supervisor can toggle.
type Panel interface {
	Open()
	Close()
	IsOpen() bool
}

// ChartsPanel is the star charts renderer surface. Err reports a
// renderer-side failure to the health check.
type ChartsPanel interface {
	Panel
	Err() error
}

// Config holds supervisor timing.
type Config struct {
	// DBInitTimeout bounds the database load phase.
	DBInitTimeout time.Duration
	// InitTimeout bounds both startup phases together.
	InitTimeout time.Duration
	// HealthInterval is the cadence of the health loop. Zero disables
	// the loop; CheckHealth can still be driven manually.
	HealthInterval time.Duration
	// MissedTickLimit is how many engine check intervals may pass
	// without a tick before the charts are considered stalled.
	MissedTickLimit int
	// CheckInterval is the engine's sweep interval, for the stall math.
	CheckInterval time.Duration
}

func (c *Config) withDefaults() {
	if c.DBInitTimeout <= 0 {
		c.DBInitTimeout = DefaultDBInitTimeout
	}
	if c.InitTimeout <= 0 {
		c.InitTimeout = DefaultInitTimeout
	}
	if c.MissedTickLimit <= 0 {
		c.MissedTickLimit = DefaultMissedTickLimit
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 500 * time.Millisecond
	}
}

// Dependencies holds all dependencies for the supervisor.
type Dependencies struct {
	// LoadDatabase loads the object database, the first startup phase.
	LoadDatabase func(ctx context.Context) error
	// InitDiscovery initializes the discovery store and engine, the
	// second startup phase.
	InitDiscovery func(ctx context.Context) error

	Charts  ChartsPanel
	Scanner Panel

	// EngineStatus feeds the stall detection. Optional; nil disables it.
	EngineStatus func() core.EngineStatus

	Events *dispatch.Dispatcher
	Clock  clock.Clock
	Log    *slog.Logger

	// Influx receives health points, best effort. Optional.
	Influx *telemetry.InfluxManager
}

// Supervisor is the dual navigation mode chooser.
type Supervisor struct {
	deps Dependencies
	cfg  Config

	mu              sync.Mutex
	mode            Mode
	missedTicks     int
	lastHealthCheck time.Time

	ready    chan struct{}
	stopChan chan struct{}
	running  bool
}

// New creates a supervisor in the Initializing state.
func New(deps Dependencies, cfg Config) *Supervisor {
	cfg.withDefaults()
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewReal()
	}
	return &Supervisor{
		deps:     deps,
		cfg:      cfg,
		mode:     ModeInitializing,
		ready:    make(chan struct{}),
		stopChan: make(chan struct{}),
	}
}

// Start runs the bounded startup phases and settles on a mode. Init
// failure is not an error to the caller; it selects the scanner. The
// health loop starts afterwards when a health interval is configured.
func (s *Supervisor) Start(ctx context.Context) {
	defer close(s.ready)

	begin := time.Now()
	err := runPhase(ctx, s.cfg.DBInitTimeout, s.deps.LoadDatabase)
	if err == nil {
		remaining := s.cfg.InitTimeout - time.Since(begin)
		if remaining <= 0 {
			err = fmt.Errorf("init window exhausted after database load")
		} else {
			err = runPhase(ctx, remaining, s.deps.InitDiscovery)
		}
	}

	if err != nil {
		s.deps.Log.Warn("Star charts unavailable, selecting long-range scanner",
			"error", err)
		s.transition(ModeScanner)
	} else {
		s.transition(ModeStarCharts)
	}

	if s.cfg.HealthInterval > 0 {
		s.mu.Lock()
		s.running = true
		s.mu.Unlock()
		go s.healthLoop()
	}
}

// runPhase runs fn under a deadline. A phase that overruns loses its
// result; the supervisor falls back rather than waiting.
func runPhase(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(pctx) }()

	select {
	case err := <-done:
		return err
	case <-pctx.Done():
		return pctx.Err()
	}
}

// Ready returns a channel closed once startup has settled on a mode.
func (s *Supervisor) Ready() <-chan struct{} {
	return s.ready
}

// Stop halts the health loop.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.stopChan)
		s.running = false
	}
}

func (s *Supervisor) healthLoop() {
	ticker := time.NewTicker(s.cfg.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.CheckHealth(s.deps.Clock.Now())
		}
	}
}

// CheckHealth runs one health evaluation. While the charts are active, a
// renderer-reported error or an engine stall of MissedTickLimit check
// intervals degrades to the scanner. Stall detection counts intervals, not
// wall-clock sleeps.
func (s *Supervisor) CheckHealth(now time.Time) {
	s.mu.Lock()
	s.lastHealthCheck = now

	if s.mode != ModeStarCharts {
		s.mu.Unlock()
		return
	}

	var reason string
	if err := s.deps.Charts.Err(); err != nil {
		reason = fmt.Sprintf("charts renderer error: %v", err)
	} else if s.deps.EngineStatus != nil {
		st := s.deps.EngineStatus()
		if !st.LastTickAt.IsZero() {
			s.missedTicks = int(now.Sub(st.LastTickAt) / s.cfg.CheckInterval)
			if s.missedTicks >= s.cfg.MissedTickLimit {
				reason = fmt.Sprintf("discovery engine stalled for %d intervals", s.missedTicks)
			}
		}
	}
	s.mu.Unlock()

	if s.deps.Influx != nil {
		point := telemetry.NavHealthPoint(string(s.Mode()), s.missedTicksSnapshot(), s.IsOpen(), now)
		_ = s.deps.Influx.WritePoint(context.Background(), "navigation_health", point)
	}

	if reason != "" {
		s.degrade(reason)
	}
}

// degrade moves charts -> degraded -> scanner, carrying the open state
// over so the player keeps a navigation view, and posts a single banner.
func (s *Supervisor) degrade(reason string) {
	s.deps.Log.Warn("Navigation degraded", "reason", reason)

	s.transition(ModeDegraded)

	wasOpen := s.deps.Charts.IsOpen()
	if wasOpen {
		s.deps.Charts.Close()
	}

	s.transition(ModeScanner)

	if wasOpen {
		s.deps.Scanner.Open()
	}

	if s.deps.Events != nil {
		s.deps.Events.Publish(dispatch.Event{
			Name: dispatch.EventNotification,
			Payload: core.Notification{
				Title:   "Navigation Systems Degraded",
				Message: "Star charts offline, long-range scanner active",
				Level:   core.LevelMajor,
			},
		})
	}
}

// transition moves to the target mode, enforcing the allowed-transition
// table, and announces the resulting active panel.
func (s *Supervisor) transition(to Mode) {
	s.mu.Lock()
	from := s.mode
	if !transitionAllowed(from, to) {
		s.mu.Unlock()
		s.deps.Log.Error("Invalid navigation transition ignored",
			"from", string(from), "to", string(to))
		return
	}
	s.mode = to
	s.mu.Unlock()

	s.deps.Log.Info("Navigation mode changed",
		"from", string(from), "to", string(to))

	if s.deps.Events != nil {
		s.deps.Events.Publish(dispatch.Event{
			Name:    dispatch.EventNavState,
			Payload: core.NavState{Active: s.Active()},
		})
	}
}

func transitionAllowed(from, to Mode) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Mode returns the current supervisor mode.
func (s *Supervisor) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Active reports which panel the open/close toggle currently drives:
// "charts" only while star charts are healthy, "scanner" otherwise.
func (s *Supervisor) Active() string {
	if s.Mode() == ModeStarCharts {
		return ActiveCharts
	}
	return ActiveScanner
}

// Open opens the active navigation panel.
func (s *Supervisor) Open() {
	s.activePanel().Open()
}

// Close closes the active navigation panel.
func (s *Supervisor) Close() {
	s.activePanel().Close()
}

// IsOpen reports whether the active navigation panel is open.
func (s *Supervisor) IsOpen() bool {
	return s.activePanel().IsOpen()
}

func (s *Supervisor) activePanel() Panel {
	if s.Mode() == ModeStarCharts {
		return s.deps.Charts
	}
	return s.deps.Scanner
}

func (s *Supervisor) missedTicksSnapshot() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.missedTicks
}

// Status returns a snapshot of the supervisor.
func (s *Supervisor) Status() core.NavStatus {
	s.mu.Lock()
	mode := s.mode
	missed := s.missedTicks
	lastCheck := s.lastHealthCheck
	s.mu.Unlock()

	return core.NavStatus{
		Mode:            string(mode),
		Active:          s.Active(),
		IsOpen:          s.IsOpen(),
		MissedTicks:     missed,
		LastHealthCheck: lastCheck,
	}
}
