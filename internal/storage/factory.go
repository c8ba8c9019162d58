// internal/storage/factory.go
package storage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/helionav/starcharts/internal/config"
	"github.com/helionav/starcharts/internal/logging"
	"github.com/helionav/starcharts/internal/storage/gormstore"
	"github.com/helionav/starcharts/internal/storage/memory"
)

var (
	_ Backend    = (*memory.Backend)(nil)
	_ Backend    = (*gormstore.Backend)(nil)
	_ WriteTimed = (*gormstore.Backend)(nil)
)

// NewBackend creates a storage backend based on configuration. The postgres
// and sqlite types both persist through the shared GORM connection, so they
// need the database the connection manager opened.
func NewBackend(cfg config.StorageConfig, db *gorm.DB, logManager *logging.SlogManager) (Backend, error) {
	switch cfg.Type {
	case "postgres", "sqlite":
		if db == nil {
			return nil, fmt.Errorf("storage type %s requires a database connection", cfg.Type)
		}
		return gormstore.New(gormstore.Dependencies{DB: db, LogManager: logManager}), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
