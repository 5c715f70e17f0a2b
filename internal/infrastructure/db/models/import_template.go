package models

import (
	"time"

	"gorm.io/datatypes"
)

type ColumnMapping struct {
	ColumnHeader string `json:"column_header"`
	VariableName string `json:"variable_name"`
	DataType     string `json:"data_type"`
}

type ImportTemplate struct {
	ID           string         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name         string         `gorm:"type:text;not null"`
	SheetName    string         `gorm:"type:text;not null;default:''"`
	DataStartRow int            `gorm:"not null;default:2"`
	DataEndRow   *int
	Mappings     datatypes.JSON `gorm:"type:jsonb;not null"`
	KeyColumns   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ImportTemplate) TableName() string {
	return "import_templates"
}
