package ingest

import "context"

type TemplateRepository interface {
	List(ctx context.Context) ([]ImportTemplate, error)
	GetByID(ctx context.Context, id string) (*ImportTemplate, error)
	First(ctx context.Context) (*ImportTemplate, error)
	Create(ctx context.Context, tmpl *ImportTemplate) error
	Update(ctx context.Context, tmpl *ImportTemplate) error
	Delete(ctx context.Context, id string) error
	NameTaken(ctx context.Context, name string, excludeID string) (bool, error)
}

type ReplaceRequest struct {
	SourceFile string
	TemplateID string
	Records    []NormalizedRecord
}

type RecordStore interface {
	ReplaceBySource(ctx context.Context, req ReplaceRequest) (int64, error)
	CountByTemplate(ctx context.Context, templateID string) (int64, error)
}

type BatchRepository interface {
	Create(ctx context.Context, batch ImportBatch) error
	GetByID(ctx context.Context, id string) (*ImportBatch, error)
}

type WorkbookReader interface {
	// ReadSheet loads sheetName, or the first sheet when sheetName is empty.
	ReadSheet(ctx context.Context, path string, sheetName string) (Sheet, error)
}

type BatchImported struct {
	BatchID      string   `json:"batch_id"`
	TemplateIDs  []string `json:"template_ids"`
	FileNames    []string `json:"file_names"`
	TotalRecords int64    `json:"total_records"`
}

type RecomputeNotifier interface {
	NotifyBatchImported(ctx context.Context, event BatchImported) error
}
