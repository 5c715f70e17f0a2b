package ingest

import "time"

// NormalizedRecord is one accepted source row. Data keys are FoldKey forms
// of the owning template's variable names.
type NormalizedRecord struct {
	BatchID    string
	TemplateID string
	SourceFile string
	UploadedBy string
	RowNumber  int
	Data       map[string]any
	IngestedAt time.Time
}

type ImportBatch struct {
	ID           string
	UploadedBy   string
	TemplateIDs  []string
	FileNames    []string
	TotalRecords int64
	Files        []FileOutcome
	CreatedAt    time.Time
}

// AddFile folds one file's outcome into the batch counters. A template is
// listed once it was resolved for a file, whether or not the file imported.
func (b *ImportBatch) AddFile(outcome FileOutcome) {
	b.Files = append(b.Files, outcome)
	b.FileNames = append(b.FileNames, outcome.FileName)
	if outcome.Err == "" {
		b.TotalRecords += outcome.RecordCount
	}
	if outcome.TemplateID == "" {
		return
	}
	for _, id := range b.TemplateIDs {
		if id == outcome.TemplateID {
			return
		}
	}
	b.TemplateIDs = append(b.TemplateIDs, outcome.TemplateID)
}

// FieldDiagnostic records a cell that was dropped because it could not be coerced.
type FieldDiagnostic struct {
	RowNumber int
	Field     string
	RawValue  string
	Reason    string
}

type FileOutcome struct {
	FileName    string
	TemplateID  string
	RecordCount int64
	SkippedRows int64
	Err         string
	Diagnostics []FieldDiagnostic
}

func (o FileOutcome) Failed() bool {
	return o.Err != ""
}
