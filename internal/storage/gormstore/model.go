// internal/storage/gormstore/model.go
package gormstore

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels is a list of all the structs exported here which represent
// tables in the database schema
var DatabaseModels = []interface{}{
	&ChartsInfo{},
	&DiscoveryBlob{},
}

// ChartsInfo contains install metadata about this deployment
type ChartsInfo struct {
	gorm.Model
	InstallName        string `json:"installName" gorm:"size:127"`
	InstallDescription string `json:"installDescription" gorm:"size:255"`
	SchemaVersion      int    `json:"schemaVersion"`
}

func (*ChartsInfo) TableName() string {
	return "charts_infos"
}

// DiscoveryBlob is one persisted discovery state document, keyed by blob name
type DiscoveryBlob struct {
	BlobKey   string         `json:"blobKey" gorm:"primaryKey;size:191"`
	Blob      datatypes.JSON `json:"blob"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (*DiscoveryBlob) TableName() string {
	return "discovery_blobs"
}
