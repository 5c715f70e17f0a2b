package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

type UploadedFile struct {
	FileName   string
	Path       string
	TemplateID string
}

type ImportSpreadsheetsInput struct {
	UploadedBy        string
	DefaultTemplateID string
	Files             []UploadedFile
}

type DiagnosticOutput struct {
	RowNumber int    `json:"row"`
	Field     string `json:"field"`
	RawValue  string `json:"raw_value"`
	Reason    string `json:"reason"`
}

type FileResultOutput struct {
	FileName    string             `json:"file_name"`
	TemplateID  string             `json:"template_id,omitempty"`
	RecordCount *int64             `json:"record_count,omitempty"`
	SkippedRows int64              `json:"skipped_rows,omitempty"`
	Error       string             `json:"error,omitempty"`
	Diagnostics []DiagnosticOutput `json:"diagnostics,omitempty"`
}

type ImportSpreadsheetsOutput struct {
	BatchID      string             `json:"batch_id"`
	TotalRecords int64              `json:"total_records"`
	Files        []FileResultOutput `json:"files"`
}

type ImportSpreadsheets interface {
	Execute(ctx context.Context, in ImportSpreadsheetsInput) (ImportSpreadsheetsOutput, error)
}

type templateLoader interface {
	GetByID(ctx context.Context, id string) (*domain.ImportTemplate, error)
	First(ctx context.Context) (*domain.ImportTemplate, error)
}

type recordReplacer interface {
	ReplaceBySource(ctx context.Context, req domain.ReplaceRequest) (int64, error)
}

type batchCreator interface {
	Create(ctx context.Context, batch domain.ImportBatch) error
}

type ImportSpreadsheetsConfig struct {
	Policy domain.RowPolicy
	Now    func() time.Time
}

type importSpreadsheets struct {
	templates templateLoader
	records   recordReplacer
	batches   batchCreator
	notifier  domain.RecomputeNotifier
	files     *fileImporter
	now       func() time.Time
}

func NewImportSpreadsheets(
	templates templateLoader,
	reader domain.WorkbookReader,
	records recordReplacer,
	batches batchCreator,
	notifier domain.RecomputeNotifier,
	cfg ImportSpreadsheetsConfig,
) ImportSpreadsheets {
	if cfg.Policy.Name == "" {
		cfg.Policy = domain.StrictPolicy
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &importSpreadsheets{
		templates: templates,
		records:   records,
		batches:   batches,
		notifier:  notifier,
		files:     newFileImporter(reader, cfg.Policy),
		now:       cfg.Now,
	}
}

// Execute imports every file in order. File-scoped failures end up in the
// output; only store failures abort the batch.
func (uc *importSpreadsheets) Execute(ctx context.Context, in ImportSpreadsheetsInput) (ImportSpreadsheetsOutput, error) {
	uploadedBy := strings.TrimSpace(in.UploadedBy)
	if uploadedBy == "" {
		return ImportSpreadsheetsOutput{}, ErrMissingUploader
	}
	if len(in.Files) == 0 {
		return ImportSpreadsheetsOutput{}, ErrNoFiles
	}

	// A batch runs to completion even if the client goes away.
	ctx = context.WithoutCancel(ctx)

	batch := domain.ImportBatch{
		ID:         uuid.NewString(),
		UploadedBy: uploadedBy,
		CreatedAt:  uc.now(),
	}
	prov := provenance{batchID: batch.ID, uploadedBy: uploadedBy, ingestedAt: batch.CreatedAt}
	cache := make(map[string]*domain.ImportTemplate)

	for _, file := range in.Files {
		outcome, err := uc.importFile(ctx, file, in.DefaultTemplateID, prov, cache)
		if err != nil {
			return ImportSpreadsheetsOutput{}, err
		}
		if outcome.Failed() {
			log.Printf("import batch %s: file %s failed: %s", batch.ID, outcome.FileName, outcome.Err)
		}
		batch.AddFile(outcome)
	}

	if err := uc.batches.Create(ctx, batch); err != nil {
		return ImportSpreadsheetsOutput{}, fmt.Errorf("%w: save batch: %v", ErrPersistImport, err)
	}

	if uc.notifier != nil && batch.TotalRecords > 0 {
		event := domain.BatchImported{
			BatchID:      batch.ID,
			TemplateIDs:  batch.TemplateIDs,
			FileNames:    batch.FileNames,
			TotalRecords: batch.TotalRecords,
		}
		if err := uc.notifier.NotifyBatchImported(ctx, event); err != nil {
			log.Printf("import batch %s: recompute notification failed: %v", batch.ID, err)
		}
	}

	return toImportOutput(batch), nil
}

func (uc *importSpreadsheets) importFile(
	ctx context.Context,
	file UploadedFile,
	defaultTemplateID string,
	prov provenance,
	cache map[string]*domain.ImportTemplate,
) (domain.FileOutcome, error) {
	outcome := domain.FileOutcome{FileName: file.FileName}

	tmpl, err := uc.templateFor(ctx, file.TemplateID, defaultTemplateID, cache)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			outcome.Err = err.Error()
			return outcome, nil
		}
		return outcome, fmt.Errorf("%w: %v", ErrLoadTemplate, err)
	}
	outcome.TemplateID = tmpl.ID

	parsed, err := uc.files.parse(ctx, file, *tmpl, prov)
	outcome.SkippedRows = parsed.skipped
	outcome.Diagnostics = parsed.diagnostics
	if err != nil {
		outcome.Err = err.Error()
		return outcome, nil
	}

	count, err := uc.records.ReplaceBySource(ctx, domain.ReplaceRequest{
		SourceFile: file.FileName,
		TemplateID: tmpl.ID,
		Records:    parsed.records,
	})
	if err != nil {
		return outcome, fmt.Errorf("%w: replace records of %s: %v", ErrPersistImport, file.FileName, err)
	}
	outcome.RecordCount = count
	return outcome, nil
}

// templateFor picks the file's template, then the request default, then the
// first stored template.
func (uc *importSpreadsheets) templateFor(ctx context.Context, fileTemplateID, defaultTemplateID string, cache map[string]*domain.ImportTemplate) (*domain.ImportTemplate, error) {
	id := strings.TrimSpace(fileTemplateID)
	if id == "" {
		id = strings.TrimSpace(defaultTemplateID)
	}
	if tmpl, ok := cache[id]; ok {
		return tmpl, nil
	}

	var (
		tmpl *domain.ImportTemplate
		err  error
	)
	switch {
	case id == "":
		tmpl, err = uc.templates.First(ctx)
	case !isUUID(id):
		err = fmt.Errorf("%w: %q is not a valid id", domain.ErrTemplateNotFound, id)
	default:
		tmpl, err = uc.templates.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	cache[id] = tmpl
	return tmpl, nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func toImportOutput(batch domain.ImportBatch) ImportSpreadsheetsOutput {
	files := make([]FileResultOutput, 0, len(batch.Files))
	for _, f := range batch.Files {
		files = append(files, toFileResultOutput(f))
	}
	return ImportSpreadsheetsOutput{
		BatchID:      batch.ID,
		TotalRecords: batch.TotalRecords,
		Files:        files,
	}
}

func toFileResultOutput(f domain.FileOutcome) FileResultOutput {
	out := FileResultOutput{
		FileName:    f.FileName,
		TemplateID:  f.TemplateID,
		SkippedRows: f.SkippedRows,
		Error:       f.Err,
	}
	if !f.Failed() {
		count := f.RecordCount
		out.RecordCount = &count
	}
	for _, d := range f.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, DiagnosticOutput{
			RowNumber: d.RowNumber,
			Field:     d.Field,
			RawValue:  d.RawValue,
			Reason:    d.Reason,
		})
	}
	return out
}
