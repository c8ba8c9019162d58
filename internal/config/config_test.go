package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "starcharts.cfg.json"), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"catalog": { "dir": "/data/universe" },
		"storage": { "type": "memory" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "/data/universe", viper.GetString("catalog.dir"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./chartlogs", viper.GetString("logsDir"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "./catalog", viper.GetString("catalog.dir"))
	assert.Equal(t, "sqlite", viper.GetString("storage.type"))
	assert.Equal(t, "./starcharts.db", viper.GetString("storage.sqlite.path"))
	assert.Equal(t, 500, viper.GetInt("discovery.checkIntervalMs"))
	assert.Equal(t, 5, viper.GetInt("discovery.maxPerTick"))
	assert.Equal(t, 10000, viper.GetInt("discovery.burstWindowMs"))
	assert.Equal(t, 50, viper.GetInt("discovery.spatialCellKm"))
	assert.Equal(t, 50, viper.GetInt("discovery.defaultRadiusKm"))
	assert.Equal(t, false, viper.GetBool("discovery.discoverAll"))
	assert.Equal(t, 0, viper.GetInt("discovery.cooldownMs.major"))
	assert.Equal(t, 10000, viper.GetInt("discovery.cooldownMs.minor"))
	assert.Equal(t, 30000, viper.GetInt("discovery.cooldownMs.background"))
	assert.Equal(t, 100, viper.GetInt("supervisor.dbInitTimeoutMs"))
	assert.Equal(t, 500, viper.GetInt("supervisor.initTimeoutMs"))
	assert.Equal(t, 30, viper.GetInt("supervisor.healthIntervalSec"))
	assert.Equal(t, 5, viper.GetInt("supervisor.missedTickLimit"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "starcharts", viper.GetString("otel.serviceName"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "star_charts", viper.GetString("influx.bucket"))
	assert.Equal(t, "./charts", viper.GetString("chart.outputDir"))
	assert.Equal(t, true, viper.GetBool("chart.compressOutput"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetDiscoveryConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)
	require.NoError(t, Load(dir))

	cfg := GetDiscoveryConfig()
	assert.Equal(t, 500*time.Millisecond, cfg.CheckInterval)
	assert.Equal(t, 5, cfg.MaxPerTick)
	assert.Equal(t, 10*time.Second, cfg.BurstWindow)
	assert.Equal(t, float64(50), cfg.SpatialCellKm)
	assert.Equal(t, float64(50), cfg.DefaultRadiusKm)
	assert.Equal(t, false, cfg.DiscoverAll)
	assert.Equal(t, time.Duration(0), cfg.Cooldowns.Major)
	assert.Equal(t, 10*time.Second, cfg.Cooldowns.Minor)
	assert.Equal(t, 30*time.Second, cfg.Cooldowns.Background)
	assert.Equal(t, time.Second, cfg.DedupeGuard)
}

func TestGetDiscoveryConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"discovery": {
			"checkIntervalMs": 250,
			"maxPerTick": 10,
			"burstWindowMs": 5000,
			"spatialCellKm": 25,
			"defaultRadiusKm": 100,
			"discoverAll": true,
			"cooldownMs": { "minor": 2000, "background": 4000 }
		}
	}`)
	require.NoError(t, Load(dir))

	cfg := GetDiscoveryConfig()
	assert.Equal(t, 250*time.Millisecond, cfg.CheckInterval)
	assert.Equal(t, 10, cfg.MaxPerTick)
	assert.Equal(t, 5*time.Second, cfg.BurstWindow)
	assert.Equal(t, float64(25), cfg.SpatialCellKm)
	assert.Equal(t, float64(100), cfg.DefaultRadiusKm)
	assert.Equal(t, true, cfg.DiscoverAll)
	assert.Equal(t, 2*time.Second, cfg.Cooldowns.Minor)
	assert.Equal(t, 4*time.Second, cfg.Cooldowns.Background)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)
	require.NoError(t, Load(dir))

	cfg := GetStorageConfig()
	assert.Equal(t, "sqlite", cfg.Type)
	assert.Equal(t, "./starcharts.db", cfg.SQLite.Path)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, "starcharts", cfg.Postgres.Database)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "postgres",
			"sqlite": { "path": "/tmp/sc.db", "snapshotDir": "/tmp/snaps" },
			"postgres": { "host": "10.0.0.1", "database": "nav" }
		}
	}`)
	require.NoError(t, Load(dir))

	cfg := GetStorageConfig()
	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, "/tmp/sc.db", cfg.SQLite.Path)
	assert.Equal(t, "/tmp/snaps", cfg.SQLite.SnapshotDir)
	assert.Equal(t, "10.0.0.1", cfg.Postgres.Host)
	assert.Equal(t, "nav", cfg.Postgres.Database)
}

func TestGetSupervisorConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)
	require.NoError(t, Load(dir))

	cfg := GetSupervisorConfig()
	assert.Equal(t, 100*time.Millisecond, cfg.DBInitTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.InitTimeout)
	assert.Equal(t, 30*time.Second, cfg.HealthInterval)
	assert.Equal(t, 5, cfg.MissedTickLimit)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)
	require.NoError(t, Load(dir))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetInfluxConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{}`)
	require.NoError(t, Load(dir))

	ic := GetInfluxConfig()
	assert.Equal(t, false, ic.Enabled)
	assert.Equal(t, "http", ic.Protocol)
	assert.Equal(t, "localhost", ic.Host)
	assert.Equal(t, "8086", ic.Port)
	assert.Equal(t, "helionav", ic.Org)
	assert.Equal(t, "star_charts", ic.Bucket)
}

func TestGetLoggingConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "warn",
		"graylog": { "enabled": true, "address": "gl:12201" }
	}`)
	require.NoError(t, Load(dir))

	lc := GetLoggingConfig()
	assert.Equal(t, "warn", lc.Level)
	assert.Equal(t, true, lc.GraylogEnabled)
	assert.Equal(t, "gl:12201", lc.GraylogAddress)
}
