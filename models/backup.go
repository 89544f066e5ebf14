package models

import (
	"time"

	"gorm.io/datatypes"
)

// BackupRecord stores a server-side snapshot taken before an import
// (create_backup_before_import option). Payload is the full Backup Document.
type BackupRecord struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Filename     string         `json:"filename"`
	Payload      datatypes.JSON `json:"-" gorm:"type:jsonb"`
	TotalRecords int            `json:"total_records"`
	CreatedAt    time.Time      `json:"created_at"`
}
