package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
	"github.com/mohammadpnp/sheet-import/internal/infrastructure/db/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) List(ctx context.Context) ([]domain.ImportTemplate, error) {
	var rows []models.ImportTemplate
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list import templates: %w", err)
	}

	out := make([]domain.ImportTemplate, 0, len(rows))
	for _, row := range rows {
		tmpl, err := templateFromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, tmpl)
	}
	return out, nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*domain.ImportTemplate, error) {
	var row models.ImportTemplate
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("get import template: %w", err)
	}

	tmpl, err := templateFromModel(row)
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// First returns the oldest template, the last-resort default for uploads.
func (r *TemplateRepository) First(ctx context.Context) (*domain.ImportTemplate, error) {
	var row models.ImportTemplate
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no import templates configured", domain.ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("get first import template: %w", err)
	}

	tmpl, err := templateFromModel(row)
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *TemplateRepository) Create(ctx context.Context, tmpl *domain.ImportTemplate) error {
	row, err := templateToModel(*tmpl)
	if err != nil {
		return err
	}
	row.ID = ""

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return templateWriteError("create", err)
	}

	tmpl.ID = row.ID
	tmpl.CreatedAt = row.CreatedAt
	tmpl.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *TemplateRepository) Update(ctx context.Context, tmpl *domain.ImportTemplate) error {
	row, err := templateToModel(*tmpl)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return templateWriteError("update", err)
	}

	tmpl.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.ImportTemplate{}, "id = ?", id)
	if result.Error != nil {
		return templateWriteError("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

// NameTaken compares names case-insensitively, matching the unique index.
func (r *TemplateRepository) NameTaken(ctx context.Context, name string, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ImportTemplate{}).
		Where("LOWER(name) = LOWER(?)", name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check import template name: %w", err)
	}
	return count > 0, nil
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// templateWriteError turns constraint violations into domain errors so a
// lost race against another writer is reported like the checked case.
func templateWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrTemplateNameConflict, pgErr.Detail)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrTemplateReferenced, pgErr.Detail)
		}
	}
	return fmt.Errorf("%s import template: %w", op, err)
}

func templateToModel(t domain.ImportTemplate) (models.ImportTemplate, error) {
	mappings := make([]models.ColumnMapping, 0, len(t.Mappings))
	for _, m := range t.Mappings {
		mappings = append(mappings, models.ColumnMapping{
			ColumnHeader: m.ColumnHeader,
			VariableName: m.VariableName,
			DataType:     string(m.DataType),
		})
	}
	mappingsJSON, err := json.Marshal(mappings)
	if err != nil {
		return models.ImportTemplate{}, fmt.Errorf("encode mappings: %w", err)
	}

	keyColumns := t.KeyColumns
	if keyColumns == nil {
		keyColumns = []string{}
	}
	keysJSON, err := json.Marshal(keyColumns)
	if err != nil {
		return models.ImportTemplate{}, fmt.Errorf("encode key columns: %w", err)
	}

	return models.ImportTemplate{
		ID:           t.ID,
		Name:         t.Name,
		SheetName:    t.SheetName,
		DataStartRow: t.DataStartRow,
		DataEndRow:   t.DataEndRow,
		Mappings:     datatypes.JSON(mappingsJSON),
		KeyColumns:   datatypes.JSON(keysJSON),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}, nil
}

func templateFromModel(row models.ImportTemplate) (domain.ImportTemplate, error) {
	var mappings []models.ColumnMapping
	if err := json.Unmarshal(row.Mappings, &mappings); err != nil {
		return domain.ImportTemplate{}, fmt.Errorf("decode mappings of template %s: %w", row.ID, err)
	}
	var keyColumns []string
	if len(row.KeyColumns) > 0 {
		if err := json.Unmarshal(row.KeyColumns, &keyColumns); err != nil {
			return domain.ImportTemplate{}, fmt.Errorf("decode key columns of template %s: %w", row.ID, err)
		}
	}

	out := domain.ImportTemplate{
		ID:           row.ID,
		Name:         row.Name,
		SheetName:    row.SheetName,
		DataStartRow: row.DataStartRow,
		DataEndRow:   row.DataEndRow,
		KeyColumns:   keyColumns,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	for _, m := range mappings {
		dataType, ok := domain.ParseDataType(m.DataType)
		if !ok {
			dataType = domain.DataTypeString
		}
		out.Mappings = append(out.Mappings, domain.ColumnMapping{
			ColumnHeader: m.ColumnHeader,
			VariableName: m.VariableName,
			DataType:     dataType,
		})
	}
	return out, nil
}
