// internal/storage/gormstore/gormstore.go

// Package gormstore persists discovery blobs through GORM, against whichever
// database the connection manager established (Postgres or SQLite).
package gormstore

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/helionav/starcharts/internal/logging"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
}

// Backend implements blob persistence over GORM.
type Backend struct {
	deps        Dependencies
	lastWriteNs atomic.Int64
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{deps: deps}
}

// Init migrates the schema. Idempotent, so it is safe when the connection
// manager already ran its own setup.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gormstore: no database connection")
	}
	if err := b.deps.DB.AutoMigrate(DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if b.deps.LogManager != nil {
		b.deps.LogManager.Logger().Debug("Discovery blob schema migrated")
	}
	return nil
}

// Close is a no-op; the connection manager owns the pool.
func (b *Backend) Close() error {
	return nil
}

// Read returns the blob stored under key, or nil if the key has never
// been written.
func (b *Backend) Read(key string) ([]byte, error) {
	if b.deps.DB == nil {
		return nil, fmt.Errorf("gormstore: no database connection")
	}

	var row DiscoveryBlob
	err := b.deps.DB.First(&row, "blob_key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return []byte(row.Blob), nil
}

// Write upserts the blob under key and records the write duration.
func (b *Backend) Write(key string, blob []byte) error {
	if b.deps.DB == nil {
		return fmt.Errorf("gormstore: no database connection")
	}

	start := time.Now()
	row := DiscoveryBlob{
		BlobKey:   key,
		Blob:      datatypes.JSON(blob),
		UpdatedAt: time.Now(),
	}
	err := b.deps.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"blob", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}

	b.lastWriteNs.Store(int64(time.Since(start)))
	return nil
}

// LastWriteDuration returns how long the most recent successful write took.
func (b *Backend) LastWriteDuration() time.Duration {
	return time.Duration(b.lastWriteNs.Load())
}
