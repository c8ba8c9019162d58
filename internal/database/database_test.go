package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helionav/starcharts/internal/storage/gormstore"
)

func newConnectedManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(zerolog.Nop())
	require.NoError(t, m.Connect())
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestConnect_SqliteFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	path := filepath.Join(t.TempDir(), "charts.db")
	viper.Set("storage.type", "sqlite")
	viper.Set("storage.sqlite.path", path)

	m := newConnectedManager(t)

	assert.True(t, m.IsValid)
	assert.True(t, m.SavingLocally)
	assert.Equal(t, path, m.SqliteFilePath)
}

func TestConnect_NoPathUsesMemory(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("storage.type", "sqlite")

	m := newConnectedManager(t)

	assert.True(t, m.IsValid)
	assert.True(t, m.SavingLocally)
	assert.Empty(t, m.SqliteFilePath)
}

func TestConnect_PostgresUnreachableFallsBack(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("storage.type", "postgres")
	viper.Set("storage.postgres.host", "127.0.0.1")
	viper.Set("storage.postgres.port", "1")
	viper.Set("storage.postgres.username", "nobody")
	viper.Set("storage.postgres.password", "nothing")
	viper.Set("storage.postgres.database", "starcharts")

	m := newConnectedManager(t)

	assert.True(t, m.IsValid)
	assert.True(t, m.SavingLocally, "unreachable Postgres falls back to SQLite")
}

func TestSetup_CreatesInstallRecord(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("storage.type", "sqlite")
	viper.Set("storage.sqlite.path", filepath.Join(t.TempDir(), "charts.db"))

	m := newConnectedManager(t)
	require.NoError(t, m.Setup())

	var count int64
	require.NoError(t, m.DB.Model(&gormstore.ChartsInfo{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var info gormstore.ChartsInfo
	require.NoError(t, m.DB.First(&info).Error)
	assert.Equal(t, "starcharts", info.InstallName)
	assert.Equal(t, 1, info.SchemaVersion)

	assert.True(t, m.DB.Migrator().HasTable(&gormstore.DiscoveryBlob{}))
}

func TestSetup_Idempotent(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("storage.type", "sqlite")
	viper.Set("storage.sqlite.path", filepath.Join(t.TempDir(), "charts.db"))

	m := newConnectedManager(t)
	require.NoError(t, m.Setup())
	require.NoError(t, m.Setup())

	var count int64
	require.NoError(t, m.DB.Model(&gormstore.ChartsInfo{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "second Setup must not duplicate the install record")
}

func TestSnapshot(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("storage.type", "sqlite")

	m := newConnectedManager(t)
	require.NoError(t, m.Setup())

	path := filepath.Join(t.TempDir(), "snapshot.db")
	require.NoError(t, m.Snapshot(path))

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, stat.Size())

	// a second snapshot replaces the file
	require.NoError(t, m.Snapshot(path))
}

func TestSnapshot_EmptyPath(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Error(t, m.Snapshot(""))
}

func TestClose_WithoutConnect(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.NoError(t, m.Close())
}
