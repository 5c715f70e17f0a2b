package ingest_test

import (
	"testing"

	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

func TestImportBatchAddFile(t *testing.T) {
	t.Parallel()

	var batch domain.ImportBatch
	batch.AddFile(domain.FileOutcome{FileName: "a.xlsx", TemplateID: "t1", RecordCount: 10})
	batch.AddFile(domain.FileOutcome{FileName: "b.xlsx", TemplateID: "t2", Err: "no valid rows"})
	batch.AddFile(domain.FileOutcome{FileName: "c.xlsx", TemplateID: "t1", RecordCount: 5})
	batch.AddFile(domain.FileOutcome{FileName: "d.xlsx", Err: "import template not found"})

	if batch.TotalRecords != 15 {
		t.Fatalf("expected 15 records, got %d", batch.TotalRecords)
	}
	if len(batch.FileNames) != 4 || len(batch.Files) != 4 {
		t.Fatalf("expected all files recorded, got %#v", batch.FileNames)
	}
	if len(batch.TemplateIDs) != 2 || batch.TemplateIDs[0] != "t1" || batch.TemplateIDs[1] != "t2" {
		t.Fatalf("expected every resolved template once, got %#v", batch.TemplateIDs)
	}
}

func TestSheetRowAndWidth(t *testing.T) {
	t.Parallel()

	sheet := domain.Sheet{Rows: [][]any{{"a"}, {"b", "c", "d"}, nil}}
	if sheet.Width() != 3 {
		t.Fatalf("expected width 3, got %d", sheet.Width())
	}
	if got := sheet.Row(2); len(got) != 3 {
		t.Fatalf("unexpected row 2: %#v", got)
	}
	if sheet.Row(0) != nil || sheet.Row(4) != nil {
		t.Fatal("expected nil outside the sheet")
	}
}
