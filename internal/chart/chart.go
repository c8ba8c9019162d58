// Package chart exports point-in-time snapshots of a sector's discovery
// state, as plain JSON for tooling and as GeoJSON for chart renderers.
package chart

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/helionav/starcharts/internal/catalog"
	"github.com/helionav/starcharts/internal/session"
	"github.com/helionav/starcharts/internal/storage"
	"github.com/helionav/starcharts/pkg/core"
)

// Dependencies holds all dependencies for the chart exporter.
type Dependencies struct {
	Catalog *catalog.Database
	Store   *storage.Store
	Session *session.Context
	Log     *slog.Logger
}

// Config holds export output settings.
type Config struct {
	OutputDir      string
	CompressOutput bool
}

// Exporter assembles and writes chart snapshots.
type Exporter struct {
	deps Dependencies
	cfg  Config
}

// New creates a chart exporter.
func New(deps Dependencies, cfg Config) *Exporter {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Exporter{deps: deps, cfg: cfg}
}

// Snapshot is the exported chart layout for one sector.
type Snapshot struct {
	Sector          string         `json:"sector"`
	Name            string         `json:"name"`
	GeneratedAt     time.Time      `json:"generatedAt"`
	Center          [3]float64     `json:"center"`
	ObjectCount     int            `json:"objectCount"`
	DiscoveredCount int            `json:"discoveredCount"`
	Objects         []ObjectStatus `json:"objects"`
}

// ObjectStatus is one catalog object with its discovery flag.
type ObjectStatus struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	DisplayName string     `json:"displayName"`
	Position    [3]float64 `json:"position"`
	Faction     string     `json:"faction,omitempty"`
	Discovered  bool       `json:"discovered"`
}

// Snapshot assembles the sector's current chart state. The sector must be
// loaded in the catalog.
func (e *Exporter) Snapshot(sectorID string) (*Snapshot, error) {
	cid := core.CanonicalID(sectorID)
	records := e.deps.Catalog.ListSector(cid)
	if records == nil {
		return nil, fmt.Errorf("sector %s not loaded", cid)
	}

	snap := &Snapshot{
		Sector:      cid,
		GeneratedAt: time.Now().UTC(),
		ObjectCount: len(records),
		Objects:     make([]ObjectStatus, 0, len(records)),
	}
	if sector, err := e.deps.Catalog.Load(cid); err == nil {
		snap.Name = sector.Name
		snap.Center = vecArray(sector.Center)
	}

	for _, rec := range records {
		discovered := e.deps.Store.IsDiscovered(rec.ID)
		if discovered {
			snap.DiscoveredCount++
		}
		snap.Objects = append(snap.Objects, ObjectStatus{
			ID:          rec.ID,
			Type:        string(rec.Type),
			DisplayName: rec.DisplayName,
			Position:    vecArray(rec.Position),
			Faction:     rec.Faction,
			Discovered:  discovered,
		})
	}
	return snap, nil
}

// WriteFile writes the sector snapshot to the output directory and returns
// the file path. The file is gzipped when compression is configured.
func (e *Exporter) WriteFile(sectorID string) (string, error) {
	snap, err := e.Snapshot(sectorID)
	if err != nil {
		return "", err
	}

	timestamp := snap.GeneratedAt.Format("20060102_150405")
	var filename string
	if e.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.charts.json.gz", snap.Sector, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.charts.json", snap.Sector, timestamp)
	}
	outputPath := filepath.Join(e.cfg.OutputDir, filename)

	if err := os.MkdirAll(e.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer file.Close()

	if e.cfg.CompressOutput {
		gz := gzip.NewWriter(file)
		if err := json.NewEncoder(gz).Encode(snap); err != nil {
			gz.Close()
			return "", fmt.Errorf("failed to encode chart: %w", err)
		}
		if err := gz.Close(); err != nil {
			return "", fmt.Errorf("failed to flush chart: %w", err)
		}
	} else {
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return "", fmt.Errorf("failed to encode chart: %w", err)
		}
	}

	e.deps.Log.Info("Chart snapshot written",
		"sector", snap.Sector,
		"path", outputPath,
		"discovered", snap.DiscoveredCount,
		"objects", snap.ObjectCount)
	return outputPath, nil
}

func vecArray(v core.Vector3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
