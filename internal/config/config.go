package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level          string
	Dir            string
	GraylogEnabled bool
	GraylogAddress string
}

// CatalogConfig holds object database source settings.
type CatalogConfig struct {
	Dir string
}

// SQLiteConfig holds local SQLite storage settings.
type SQLiteConfig struct {
	Path        string
	SnapshotDir string
}

// PostgresConfig holds shared Postgres storage settings.
type PostgresConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// StorageConfig selects and configures the discovery persistence backend.
type StorageConfig struct {
	Type     string
	SQLite   SQLiteConfig
	Postgres PostgresConfig
}

// CooldownConfig holds per-category notification cooldowns.
type CooldownConfig struct {
	Major      time.Duration
	Minor      time.Duration
	Background time.Duration
}

// DiscoveryConfig holds the proximity discovery knobs.
type DiscoveryConfig struct {
	CheckInterval   time.Duration
	MaxPerTick      int
	BurstWindow     time.Duration
	SpatialCellKm   float64
	DefaultRadiusKm float64
	DiscoverAll     bool
	Cooldowns       CooldownConfig
	DedupeGuard     time.Duration
}

// SupervisorConfig holds navigation supervisor timing.
type SupervisorConfig struct {
	DBInitTimeout   time.Duration
	InitTimeout     time.Duration
	HealthInterval  time.Duration
	MissedTickLimit int
}

// OTelConfig holds OpenTelemetry log export settings.
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// InfluxConfig holds InfluxDB telemetry settings.
type InfluxConfig struct {
	Enabled    bool
	Protocol   string
	Host       string
	Port       string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// ChartConfig holds snapshot export settings.
type ChartConfig struct {
	OutputDir      string
	CompressOutput bool
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./chartlogs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("catalog.dir", "./catalog")

	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.sqlite.path", "./starcharts.db")
	viper.SetDefault("storage.sqlite.snapshotDir", "")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "starcharts")

	viper.SetDefault("discovery.checkIntervalMs", 500)
	viper.SetDefault("discovery.maxPerTick", 5)
	viper.SetDefault("discovery.burstWindowMs", 10000)
	viper.SetDefault("discovery.spatialCellKm", 50)
	viper.SetDefault("discovery.defaultRadiusKm", 50)
	viper.SetDefault("discovery.discoverAll", false)
	viper.SetDefault("discovery.cooldownMs.major", 0)
	viper.SetDefault("discovery.cooldownMs.minor", 10000)
	viper.SetDefault("discovery.cooldownMs.background", 30000)
	viper.SetDefault("discovery.dedupeGuardMs", 1000)

	viper.SetDefault("supervisor.dbInitTimeoutMs", 100)
	viper.SetDefault("supervisor.initTimeoutMs", 500)
	viper.SetDefault("supervisor.healthIntervalSec", 30)
	viper.SetDefault("supervisor.missedTickLimit", 5)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "starcharts")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "helionav")
	viper.SetDefault("influx.bucket", "star_charts")
	viper.SetDefault("influx.backupPath", "./influx_backup.gz")

	viper.SetDefault("chart.outputDir", "./charts")
	viper.SetDefault("chart.compressOutput", true)

	viper.SetConfigName("starcharts.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetLoggingConfig returns the logging section.
func GetLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:          viper.GetString("logLevel"),
		Dir:            viper.GetString("logsDir"),
		GraylogEnabled: viper.GetBool("graylog.enabled"),
		GraylogAddress: viper.GetString("graylog.address"),
	}
}

// GetCatalogConfig returns the catalog section.
func GetCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Dir: viper.GetString("catalog.dir"),
	}
}

// GetStorageConfig returns the storage section.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		SQLite: SQLiteConfig{
			Path:        viper.GetString("storage.sqlite.path"),
			SnapshotDir: viper.GetString("storage.sqlite.snapshotDir"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("storage.postgres.host"),
			Port:     viper.GetString("storage.postgres.port"),
			Username: viper.GetString("storage.postgres.username"),
			Password: viper.GetString("storage.postgres.password"),
			Database: viper.GetString("storage.postgres.database"),
		},
	}
}

// GetDiscoveryConfig returns the discovery section.
func GetDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		CheckInterval:   msKey("discovery.checkIntervalMs"),
		MaxPerTick:      viper.GetInt("discovery.maxPerTick"),
		BurstWindow:     msKey("discovery.burstWindowMs"),
		SpatialCellKm:   viper.GetFloat64("discovery.spatialCellKm"),
		DefaultRadiusKm: viper.GetFloat64("discovery.defaultRadiusKm"),
		DiscoverAll:     viper.GetBool("discovery.discoverAll"),
		Cooldowns: CooldownConfig{
			Major:      msKey("discovery.cooldownMs.major"),
			Minor:      msKey("discovery.cooldownMs.minor"),
			Background: msKey("discovery.cooldownMs.background"),
		},
		DedupeGuard: msKey("discovery.dedupeGuardMs"),
	}
}

// GetSupervisorConfig returns the supervisor section.
func GetSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		DBInitTimeout:   msKey("supervisor.dbInitTimeoutMs"),
		InitTimeout:     msKey("supervisor.initTimeoutMs"),
		HealthInterval:  time.Duration(viper.GetInt("supervisor.healthIntervalSec")) * time.Second,
		MissedTickLimit: viper.GetInt("supervisor.missedTickLimit"),
	}
}

// GetOTelConfig returns the otel section.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the influx section.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Protocol:   viper.GetString("influx.protocol"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetChartConfig returns the chart export section.
func GetChartConfig() ChartConfig {
	return ChartConfig{
		OutputDir:      viper.GetString("chart.outputDir"),
		CompressOutput: viper.GetBool("chart.compressOutput"),
	}
}

func msKey(key string) time.Duration {
	return time.Duration(viper.GetInt(key)) * time.Millisecond
}
