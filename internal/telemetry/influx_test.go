package telemetry

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoveryPoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := DiscoveryPoint("A0", "A0_SOL", "star", true, at)

	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	assert.Contains(t, line, "discovery,")
	assert.Contains(t, line, "sector=A0")
	assert.Contains(t, line, "type=star")
	assert.Contains(t, line, `object_id="A0_SOL"`)
	assert.Contains(t, line, "burst=true")
}

func TestEngineTickPoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := EngineTickPoint("B1", 12, 3, 2, 7, at)

	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	assert.Contains(t, line, "engine_tick,")
	assert.Contains(t, line, "sector=B1")
	assert.Contains(t, line, "scanned=12i")
	assert.Contains(t, line, "discovered=3i")
	assert.Contains(t, line, "notified=2i")
	assert.Contains(t, line, "queue_depth=7i")
}

func TestNavHealthPoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NavHealthPoint("starCharts", 2, true, at)

	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	assert.Contains(t, line, "nav_health,")
	assert.Contains(t, line, "mode=starCharts")
	assert.Contains(t, line, "missed_ticks=2i")
	assert.Contains(t, line, "interface_open=true")
}

func TestInfluxManager_WritePoint_NoClientNoBackup(t *testing.T) {
	m := NewInfluxManager(zerolog.Nop(), "")

	p := DiscoveryPoint("A0", "A0_SOL", "star", false, time.Now())
	err := m.WritePoint(context.Background(), "discovery_events", p)
	assert.Error(t, err)
}

func TestInfluxManager_WritePoint_BackupWriter(t *testing.T) {
	backupPath := filepath.Join(t.TempDir(), "influx_backup.lp.gz")

	m := NewInfluxManager(zerolog.Nop(), backupPath)

	file, err := os.OpenFile(backupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)

	p := DiscoveryPoint("A0", "A0_SOL", "star", false, time.Now())
	require.NoError(t, m.WritePoint(context.Background(), "discovery_events", p))
	require.NoError(t, m.Close())

	info, err := os.Stat(backupPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size(), "backup file should contain compressed line protocol")
}
