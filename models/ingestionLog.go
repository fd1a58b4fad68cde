package models

import (
	"context"
	"log"
	"time"

	"bitbucket.org/mmdatafocus/logistics_backend/config"
)

// IngestionLog is an audit row written once per upload. Only counts
// and provenance are persisted, never the case records themselves —
// the dataset stays in memory for the session.
type IngestionLog struct {
	ID            int       `gorm:"primary_key" json:"id"`
	FileName      string    `gorm:"size:255" json:"file_name"`
	TotalRecords  int       `gorm:"not null" json:"total_records"`
	OpenRecords   int       `gorm:"not null" json:"open_records"`
	SkippedRows   int       `gorm:"not null" json:"skipped_rows"`
	DurationMs    int64     `json:"duration_ms"`
	CorrelationId string    `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func MigrateTable() {
	db := config.GetDB()
	if db == nil {
		return
	}
	if err := db.AutoMigrate(&IngestionLog{}); err != nil {
		log.Fatal(err)
	}
}

// RecordIngestion persists the audit row. A missing DB is not an
// error: the audit log is optional infrastructure.
func RecordIngestion(ctx context.Context, entry *IngestionLog) error {
	db := config.GetDB()
	if db == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}
