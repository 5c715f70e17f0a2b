package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
	"github.com/mohammadpnp/sheet-import/internal/infrastructure/db/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ImportBatchRepository struct {
	db *gorm.DB
}

func NewImportBatchRepository(db *gorm.DB) *ImportBatchRepository {
	return &ImportBatchRepository{db: db}
}

func (r *ImportBatchRepository) Create(ctx context.Context, batch domain.ImportBatch) error {
	templateIDs, err := jsonColumn(nonNilStrings(batch.TemplateIDs))
	if err != nil {
		return fmt.Errorf("encode template ids: %w", err)
	}
	fileNames, err := jsonColumn(nonNilStrings(batch.FileNames))
	if err != nil {
		return fmt.Errorf("encode file names: %w", err)
	}

	outcomes := make([]models.FileOutcome, 0, len(batch.Files))
	for _, f := range batch.Files {
		outcome := models.FileOutcome{
			FileName:    f.FileName,
			TemplateID:  f.TemplateID,
			RecordCount: f.RecordCount,
			SkippedRows: f.SkippedRows,
			Error:       f.Err,
		}
		for _, d := range f.Diagnostics {
			outcome.Diagnostics = append(outcome.Diagnostics, models.FieldDiagnostic(d))
		}
		outcomes = append(outcomes, outcome)
	}
	files, err := jsonColumn(outcomes)
	if err != nil {
		return fmt.Errorf("encode file outcomes: %w", err)
	}

	row := models.ImportBatch{
		ID:           batch.ID,
		UploadedBy:   batch.UploadedBy,
		TemplateIDs:  templateIDs,
		FileNames:    fileNames,
		TotalRecords: batch.TotalRecords,
		Files:        files,
		CreatedAt:    batch.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create import batch: %w", err)
	}
	return nil
}

func (r *ImportBatchRepository) GetByID(ctx context.Context, id string) (*domain.ImportBatch, error) {
	var row models.ImportBatch
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("get import batch: %w", err)
	}

	batch := &domain.ImportBatch{
		ID:           row.ID,
		UploadedBy:   row.UploadedBy,
		TotalRecords: row.TotalRecords,
		CreatedAt:    row.CreatedAt,
	}
	if err := json.Unmarshal(row.TemplateIDs, &batch.TemplateIDs); err != nil {
		return nil, fmt.Errorf("decode template ids: %w", err)
	}
	if err := json.Unmarshal(row.FileNames, &batch.FileNames); err != nil {
		return nil, fmt.Errorf("decode file names: %w", err)
	}

	var outcomes []models.FileOutcome
	if err := json.Unmarshal(row.Files, &outcomes); err != nil {
		return nil, fmt.Errorf("decode file outcomes: %w", err)
	}
	for _, o := range outcomes {
		f := domain.FileOutcome{
			FileName:    o.FileName,
			TemplateID:  o.TemplateID,
			RecordCount: o.RecordCount,
			SkippedRows: o.SkippedRows,
			Err:         o.Error,
		}
		for _, d := range o.Diagnostics {
			f.Diagnostics = append(f.Diagnostics, domain.FieldDiagnostic(d))
		}
		batch.Files = append(batch.Files, f)
	}
	return batch, nil
}

func jsonColumn(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
