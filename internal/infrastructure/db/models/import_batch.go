package models

import (
	"time"

	"gorm.io/datatypes"
)

type FileOutcome struct {
	FileName    string            `json:"file_name"`
	TemplateID  string            `json:"template_id,omitempty"`
	RecordCount int64             `json:"record_count"`
	SkippedRows int64             `json:"skipped_rows"`
	Error       string            `json:"error,omitempty"`
	Diagnostics []FieldDiagnostic `json:"diagnostics,omitempty"`
}

type FieldDiagnostic struct {
	RowNumber int    `json:"row"`
	Field     string `json:"field"`
	RawValue  string `json:"raw_value"`
	Reason    string `json:"reason"`
}

type ImportBatch struct {
	ID           string         `gorm:"type:uuid;primaryKey"`
	UploadedBy   string         `gorm:"type:text;not null"`
	TemplateIDs  datatypes.JSON `gorm:"column:template_ids;type:jsonb;not null"`
	FileNames    datatypes.JSON `gorm:"type:jsonb;not null"`
	TotalRecords int64          `gorm:"not null;default:0"`
	Files        datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt    time.Time
}

func (ImportBatch) TableName() string {
	return "import_batches"
}
