// internal/storage/gormstore/gormstore_test.go
package gormstore

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/helionav/starcharts/internal/logging"
)

// newTestBackend creates a Backend over a private in-memory SQLite database.
func newTestBackend(t *testing.T) (*Backend, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps the in-memory database alive and private
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	b := New(Dependencies{DB: db, LogManager: logging.NewSlogManager()})
	require.NoError(t, b.Init())
	return b, db
}

func TestInit_NoDB(t *testing.T) {
	b := New(Dependencies{})
	assert.Error(t, b.Init())
}

func TestInit_Idempotent(t *testing.T) {
	b, _ := newTestBackend(t)
	assert.NoError(t, b.Init())
}

func TestRead_MissingKey(t *testing.T) {
	b, _ := newTestBackend(t)

	blob, err := b.Read("star_charts_discovery_A0")
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestWriteAndRead(t *testing.T) {
	b, _ := newTestBackend(t)

	in := []byte(`{"version":1,"ids":["A0_SOL"]}`)
	require.NoError(t, b.Write("star_charts_discovery_A0", in))

	out, err := b.Read("star_charts_discovery_A0")
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
}

func TestWrite_Upserts(t *testing.T) {
	b, db := newTestBackend(t)

	require.NoError(t, b.Write("k", []byte(`{"version":1,"ids":[]}`)))
	require.NoError(t, b.Write("k", []byte(`{"version":1,"ids":["A0_SOL"]}`)))

	out, err := b.Read("k")
	require.NoError(t, err)
	assert.Contains(t, string(out), "A0_SOL")

	var count int64
	require.NoError(t, db.Model(&DiscoveryBlob{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "second write should replace the row, not add one")
}

func TestWrite_SeparateKeys(t *testing.T) {
	b, db := newTestBackend(t)

	require.NoError(t, b.Write("star_charts_discovery_A0", []byte(`{"version":1,"ids":["A0_SOL"]}`)))
	require.NoError(t, b.Write("star_charts_discovery_B1", []byte(`{"version":1,"ids":["B1_VEGA"]}`)))

	var count int64
	require.NoError(t, db.Model(&DiscoveryBlob{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	a0, err := b.Read("star_charts_discovery_A0")
	require.NoError(t, err)
	assert.Contains(t, string(a0), "A0_SOL")
}

func TestReadWrite_NoDB(t *testing.T) {
	b := New(Dependencies{})

	_, err := b.Read("k")
	assert.Error(t, err)
	assert.Error(t, b.Write("k", []byte("{}")))
}

func TestLastWriteDuration(t *testing.T) {
	b, _ := newTestBackend(t)
	assert.Zero(t, b.LastWriteDuration())

	require.NoError(t, b.Write("k", []byte(`{"version":1,"ids":[]}`)))
	assert.Positive(t, b.LastWriteDuration())
}

func TestClose(t *testing.T) {
	b, _ := newTestBackend(t)
	assert.NoError(t, b.Close())
}
