package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/helionav/starcharts/internal/catalog"
	"github.com/helionav/starcharts/internal/chart"
	"github.com/helionav/starcharts/internal/clock"
	"github.com/helionav/starcharts/internal/config"
	"github.com/helionav/starcharts/internal/database"
	"github.com/helionav/starcharts/internal/discovery"
	"github.com/helionav/starcharts/internal/dispatch"
	"github.com/helionav/starcharts/internal/logging"
	"github.com/helionav/starcharts/internal/monitor"
	"github.com/helionav/starcharts/internal/session"
	"github.com/helionav/starcharts/internal/storage"
	"github.com/helionav/starcharts/internal/supervisor"
	"github.com/helionav/starcharts/internal/target"
	"github.com/helionav/starcharts/internal/telemetry"
	"github.com/helionav/starcharts/internal/waypoint"
	"github.com/helionav/starcharts/pkg/core"
)

var (
	runSector string
	runRadius float64
	runSteps  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fly a scripted path through a seeded sector and export the chart",
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringVar(&runSector, "sector", "A0", "sector id to fly through")
	runCmd.Flags().Float64Var(&runRadius, "radius", 50, "targeting gear discovery radius in km")
	runCmd.Flags().IntVar(&runSteps, "steps", 120, "flight path steps (one sweep interval apart)")
}

// simHost stands in for the game host.
type simHost struct {
	pos     core.Vector3
	radius  float64
	hasShip bool
}

func (h *simHost) PlayerPosition() (core.Vector3, bool) { return h.pos, h.hasShip }
func (h *simHost) CameraPosition() (core.Vector3, bool) { return h.pos, true }
func (h *simHost) TargetingRangeKm() (float64, bool)    { return h.radius, h.radius > 0 }

// simComputer is an in-process target computer.
type simComputer struct {
	currentID string
}

func (c *simComputer) SetTarget(rec *core.ObjectRecord)   { c.currentID = rec.ID }
func (c *simComputer) SetVirtualTarget(wp *core.Waypoint) { c.currentID = wp.ID }
func (c *simComputer) ClearTarget()                       { c.currentID = "" }
func (c *simComputer) CurrentTargetID() string            { return c.currentID }

// simPanel is a headless navigation panel.
type simPanel struct {
	name string
	open bool
}

func (p *simPanel) Open()        { p.open = true }
func (p *simPanel) Close()       { p.open = false }
func (p *simPanel) IsOpen() bool { return p.open }
func (p *simPanel) Err() error   { return nil }

func runSimulation(cmd *cobra.Command, args []string) error {
	loadConfig()
	sessionStart := time.Now().UTC()
	sectorID := core.CanonicalID(runSector)

	// logging: session file + console errors, optional graylog and otel
	logCfg := config.GetLoggingConfig()
	if err := os.MkdirAll(logCfg.Dir, 0755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}
	logFile, err := os.Create(logging.LogFilePath(logCfg.Dir, "chartsim", sessionStart))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	otelCfg := config.GetOTelConfig()
	provider, err := telemetry.New(telemetry.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    logFile,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing otel: %w", err)
	}
	defer provider.Shutdown(context.Background())

	var graylog io.Writer
	if logCfg.GraylogEnabled {
		graylog, err = logging.NewGraylogWriter(logCfg.GraylogAddress)
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog unavailable: %v\n", err)
		}
	}

	sessionCtx := session.NewContext()
	logManager := logging.NewSlogManager()
	logManager.Setup(logging.Options{
		File:     logFile,
		Level:    logCfg.Level,
		Provider: provider.LoggerProvider(),
		Graylog:  graylog,
		Session:  sessionCtx,
	})
	log := logManager.Logger()

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(zerolog.WarnLevel)

	// persistence: gorm-backed unless configured for memory
	storageCfg := config.GetStorageConfig()
	var dbManager *database.Manager
	if storageCfg.Type != "memory" {
		dbManager = database.NewManager(zlog)
		if err := dbManager.Connect(); err != nil {
			return fmt.Errorf("connecting storage database: %w", err)
		}
		defer dbManager.Close()
		if err := dbManager.Setup(); err != nil {
			return fmt.Errorf("preparing storage schema: %w", err)
		}
	}

	var gormDB *gorm.DB
	if dbManager != nil {
		gormDB = dbManager.DB
	}
	backend, err := storage.NewBackend(storageCfg, gormDB, logManager)
	if err != nil {
		return fmt.Errorf("creating storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing storage backend: %w", err)
	}
	defer backend.Close()

	store := storage.NewStore(backend, log)

	// optional influx telemetry
	influxCfg := config.GetInfluxConfig()
	var influx *telemetry.InfluxManager
	if influxCfg.Enabled {
		influx = telemetry.NewInfluxManager(zlog, influxCfg.BackupPath)
		if err := influx.Connect(); err != nil {
			fmt.Fprintf(os.Stderr, "influx unavailable: %v\n", err)
			influx = nil
		} else {
			defer influx.Close()
		}
	}

	db := catalog.New(config.GetCatalogConfig().Dir, log)

	dispatcher, err := dispatch.New(logging.NewDispatchLogger(zlog))
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	discoveryCfg := config.GetDiscoveryConfig()
	host := &simHost{radius: runRadius, hasShip: true}

	engine, err := discovery.New(discovery.Dependencies{
		Catalog: db,
		Store:   store,
		Host:    host,
		Events:  dispatcher,
		Session: sessionCtx,
		Log:     log,
		Influx:  influx,
	}, discovery.Config{
		CheckInterval:   discoveryCfg.CheckInterval,
		MaxPerTick:      discoveryCfg.MaxPerTick,
		BurstWindow:     discoveryCfg.BurstWindow,
		CellKm:          discoveryCfg.SpatialCellKm,
		DefaultRadiusKm: discoveryCfg.DefaultRadiusKm,
		DiscoverAll:     discoveryCfg.DiscoverAll,
		Cooldowns: discovery.Cooldowns{
			Major:      discoveryCfg.Cooldowns.Major,
			Minor:      discoveryCfg.Cooldowns.Minor,
			Background: discoveryCfg.Cooldowns.Background,
		},
	})
	if err != nil {
		return fmt.Errorf("creating discovery engine: %w", err)
	}

	// HUD stand-in: print paced notifications, with the sink-level dedupe
	consoleSink := discovery.NewDedupingSink(discovery.SinkFunc(func(n core.Notification) {
		fmt.Printf("  [%s] %s: %s\n", n.Level, n.Title, n.Message)
	}), discoveryCfg.DedupeGuard, clock.NewReal())
	dispatcher.Subscribe(dispatch.EventNotification, discovery.SinkHandler(consoleSink))
	dispatcher.Subscribe(dispatch.EventDiscovery, func(e dispatch.Event) {
		log.Debug("Discovery event", "id", e.Payload)
	})

	waypoints := waypoint.NewRegistry(db)
	computer := &simComputer{}
	bridge := target.NewBridge(target.Dependencies{
		Catalog:   db,
		Waypoints: waypoints,
		Computer:  computer,
		Log:       log,
		Discover: func(rec *core.ObjectRecord) {
			engine.Discover(rec, time.Now())
		},
	})

	// supervisor owns startup and fallback
	var sector *core.Sector
	supCfg := config.GetSupervisorConfig()
	sup := supervisor.New(supervisor.Dependencies{
		LoadDatabase: func(ctx context.Context) error {
			loaded, err := db.Load(sectorID)
			if err != nil {
				return err
			}
			sector = loaded
			return nil
		},
		InitDiscovery: func(ctx context.Context) error {
			return engine.ActivateSector(sector, time.Now())
		},
		Charts:       &simPanel{name: "charts"},
		Scanner:      &simPanel{name: "scanner"},
		EngineStatus: engine.Status,
		Events:       dispatcher,
		Clock:        clock.NewReal(),
		Log:          log,
		Influx:       influx,
	}, supervisor.Config{
		DBInitTimeout:   supCfg.DBInitTimeout,
		InitTimeout:     supCfg.InitTimeout,
		HealthInterval:  supCfg.HealthInterval,
		MissedTickLimit: supCfg.MissedTickLimit,
		CheckInterval:   discoveryCfg.CheckInterval,
	})
	sup.Start(context.Background())
	<-sup.Ready()
	defer sup.Stop()

	timedBackend, _ := backend.(storage.WriteTimed)
	monitorSvc := monitor.NewService(monitor.Dependencies{
		LogManager:   logManager,
		Session:      sessionCtx,
		EngineStatus: engine.Status,
		NavStatus:    sup.Status,
		Backend:      timedBackend,
		StatusDir:    logCfg.Dir,
		Interval:     5 * time.Second,
	})
	if err := monitorSvc.Start(); err != nil {
		return err
	}
	defer monitorSvc.Stop()

	sup.Open()
	fmt.Printf("Navigation active: %s\n", sup.Active())

	if sup.Active() != supervisor.ActiveCharts {
		fmt.Println("Star charts unavailable; scanner mode has no discovery to simulate.")
		return nil
	}

	// scripted flight: enter the system at the rim and run straight
	// through the core, one sweep interval per step
	starName := sessionCtx.StarName()
	now := time.Now()
	engine.OnSectorEntered(sectorID, starName, now)

	start := core.Vector3{X: 450, Y: 450, Z: 0}
	end := core.Vector3{X: -450, Y: -450, Z: 0}
	for step := 0; step <= runSteps; step++ {
		f := float64(step) / float64(runSteps)
		host.pos = core.Vector3{
			X: start.X + (end.X-start.X)*f,
			Y: start.Y + (end.Y-start.Y)*f,
			Z: start.Z + (end.Z-start.Z)*f,
		}
		now = now.Add(discoveryCfg.CheckInterval)
		engine.Tick(now)
	}

	// exercise the target bridge with a mission waypoint at the far rim
	wpID := waypoint.NewID()
	if err := waypoints.Add(core.Waypoint{
		ID:          wpID,
		Position:    end,
		DisplayName: "Extraction Point",
		MissionID:   "sim",
	}); err != nil {
		return err
	}
	if err := bridge.SelectByID(wpID); err != nil {
		return err
	}
	fmt.Printf("Waypoint targeted: %s\n", bridge.CurrentTargetID())
	bridge.ClearVirtual(wpID)

	status := engine.Status()
	fmt.Printf("Flight complete: %d/%d objects charted, %d notifications\n",
		store.Count(sectorID), len(sector.Objects), status.Notified)

	// export the chart before the sector unloads
	chartCfg := config.GetChartConfig()
	exporter := chart.New(chart.Dependencies{
		Catalog: db,
		Store:   store,
		Session: sessionCtx,
		Log:     log,
	}, chart.Config(chartCfg))

	path, err := exporter.WriteFile(sectorID)
	if err != nil {
		return err
	}
	geo, err := exporter.GeoJSON(sectorID)
	if err != nil {
		return err
	}
	geoPath := filepath.Join(chartCfg.OutputDir, sectorID+".geojson")
	if err := os.WriteFile(geoPath, geo, 0644); err != nil {
		return err
	}
	fmt.Printf("Chart exported: %s\nGeoJSON layer: %s\n", path, geoPath)

	if err := engine.DeactivateSector(); err != nil {
		log.Warn("Deactivate failed", "error", err)
	}

	if dbManager != nil && dbManager.SavingLocally && storageCfg.SQLite.SnapshotDir != "" {
		snapPath := filepath.Join(storageCfg.SQLite.SnapshotDir, "starcharts_snapshot.db")
		if err := dbManager.Snapshot(snapPath); err != nil {
			log.Warn("Database snapshot failed", "error", err)
		}
	}

	return logManager.Flush(context.Background())
}
