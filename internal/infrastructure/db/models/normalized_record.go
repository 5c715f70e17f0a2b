package models

import (
	"time"

	"gorm.io/datatypes"
)

type NormalizedRecord struct {
	ID         int64          `gorm:"primaryKey"`
	BatchID    string         `gorm:"type:uuid;not null;index"`
	TemplateID string         `gorm:"type:uuid;not null"`
	SourceFile string         `gorm:"type:text;not null"`
	UploadedBy string         `gorm:"type:text;not null"`
	RowNumber  int            `gorm:"not null"`
	Data       datatypes.JSON `gorm:"type:jsonb;not null"`
	IngestedAt time.Time      `gorm:"not null"`
}

func (NormalizedRecord) TableName() string {
	return "normalized_records"
}
