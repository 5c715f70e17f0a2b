package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

type GetImportBatchInput struct {
	ID string
}

type GetImportBatchOutput struct {
	ID           string             `json:"id"`
	UploadedBy   string             `json:"uploaded_by"`
	TemplateIDs  []string           `json:"template_ids"`
	FileNames    []string           `json:"file_names"`
	TotalRecords int64              `json:"total_records"`
	Files        []FileResultOutput `json:"files"`
	CreatedAt    time.Time          `json:"created_at"`
}

type GetImportBatch interface {
	Execute(ctx context.Context, in GetImportBatchInput) (GetImportBatchOutput, error)
}

type batchGetter interface {
	GetByID(ctx context.Context, id string) (*domain.ImportBatch, error)
}

type getImportBatch struct {
	repo batchGetter
}

func NewGetImportBatch(repo batchGetter) GetImportBatch {
	return &getImportBatch{repo: repo}
}

func (uc *getImportBatch) Execute(ctx context.Context, in GetImportBatchInput) (GetImportBatchOutput, error) {
	if !isUUID(in.ID) {
		return GetImportBatchOutput{}, ErrInvalidBatchID
	}

	batch, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			return GetImportBatchOutput{}, ErrBatchNotFound
		}
		return GetImportBatchOutput{}, fmt.Errorf("%w: %v", ErrGetImportBatch, err)
	}

	files := make([]FileResultOutput, 0, len(batch.Files))
	for _, f := range batch.Files {
		files = append(files, toFileResultOutput(f))
	}

	return GetImportBatchOutput{
		ID:           batch.ID,
		UploadedBy:   batch.UploadedBy,
		TemplateIDs:  nonNil(batch.TemplateIDs),
		FileNames:    nonNil(batch.FileNames),
		TotalRecords: batch.TotalRecords,
		Files:        files,
		CreatedAt:    batch.CreatedAt,
	}, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
