package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
	"github.com/mohammadpnp/sheet-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

var recordTable = models.NormalizedRecord{}.TableName()

var recordColumns = []string{"batch_id", "template_id", "source_file", "uploaded_by", "row_number", "data", "ingested_at"}

// RecordRepository writes records through pgx COPY and reads them through gorm.
type RecordRepository struct {
	db   *gorm.DB
	pool *pgxpool.Pool
}

func NewRecordRepository(db *gorm.DB, pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{db: db, pool: pool}
}

// ReplaceBySource drops the records a previous import of the same
// (source file, template) produced and copies in the new set. Both steps
// share one transaction, so a failure leaves the old records in place.
func (r *RecordRepository) ReplaceBySource(ctx context.Context, req domain.ReplaceRequest) (int64, error) {
	rows := make([][]any, 0, len(req.Records))
	for _, rec := range req.Records {
		data, err := json.Marshal(rec.Data)
		if err != nil {
			return 0, fmt.Errorf("encode record data of row %d: %w", rec.RowNumber, err)
		}
		rows = append(rows, []any{
			rec.BatchID,
			req.TemplateID,
			req.SourceFile,
			rec.UploadedBy,
			int32(rec.RowNumber),
			data,
			rec.IngestedAt,
		})
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM "+recordTable+" WHERE source_file = $1 AND template_id = $2",
		req.SourceFile, req.TemplateID,
	); err != nil {
		return 0, fmt.Errorf("delete previous records: %w", err)
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{recordTable}, recordColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit record replace: %w", err)
	}
	return copied, nil
}

func (r *RecordRepository) CountByTemplate(ctx context.Context, templateID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.NormalizedRecord{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count records by template: %w", err)
	}
	return count, nil
}
