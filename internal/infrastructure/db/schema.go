package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Schema is idempotent; running it on every start is safe.
const Schema = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

CREATE TABLE IF NOT EXISTS import_templates (
  id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  name TEXT NOT NULL,
  sheet_name TEXT NOT NULL DEFAULT '',
  data_start_row INT NOT NULL DEFAULT 2 CHECK (data_start_row > 0),
  data_end_row INT,
  mappings JSONB NOT NULL,
  key_columns JSONB NOT NULL DEFAULT '[]',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS import_templates_lower_name_idx ON import_templates (LOWER(name));

CREATE TABLE IF NOT EXISTS import_batches (
  id UUID PRIMARY KEY,
  uploaded_by TEXT NOT NULL,
  template_ids JSONB NOT NULL DEFAULT '[]',
  file_names JSONB NOT NULL DEFAULT '[]',
  total_records BIGINT NOT NULL DEFAULT 0,
  files JSONB NOT NULL DEFAULT '[]',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS normalized_records (
  id BIGSERIAL PRIMARY KEY,
  batch_id UUID NOT NULL,
  template_id UUID NOT NULL REFERENCES import_templates(id) ON DELETE RESTRICT,
  source_file TEXT NOT NULL,
  uploaded_by TEXT NOT NULL,
  row_number INT NOT NULL,
  data JSONB NOT NULL,
  ingested_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS normalized_records_source_idx ON normalized_records (source_file, template_id);
CREATE INDEX IF NOT EXISTS normalized_records_batch_idx ON normalized_records (batch_id);
`

func Migrate(db *gorm.DB) error {
	if err := db.Exec(Schema).Error; err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
