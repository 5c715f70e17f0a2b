package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

const maxStoredDiagnostics = 100

type provenance struct {
	batchID    string
	uploadedBy string
	ingestedAt time.Time
}

type parsedFile struct {
	records     []domain.NormalizedRecord
	skipped     int64
	diagnostics []domain.FieldDiagnostic
}

type fileImporter struct {
	reader  domain.WorkbookReader
	policy  domain.RowPolicy
	coercer domain.Coercer
}

func newFileImporter(reader domain.WorkbookReader, policy domain.RowPolicy) *fileImporter {
	return &fileImporter{
		reader:  reader,
		policy:  policy,
		coercer: domain.NewCoercer(policy.Sentinels),
	}
}

// parse turns one uploaded workbook into candidate records. Every error it
// returns is scoped to the file.
func (p *fileImporter) parse(ctx context.Context, file UploadedFile, tmpl domain.ImportTemplate, prov provenance) (parsedFile, error) {
	sheet, err := p.reader.ReadSheet(ctx, file.Path, tmpl.SheetName)
	if err != nil {
		return parsedFile{}, err
	}

	startRow := tmpl.DataStartRow
	if startRow < 1 {
		startRow = domain.DefaultDataStartRow
	}

	var literalHeader []string
	headerRow := make([]string, sheet.Width())
	if startRow > 1 {
		literalHeader = textRow(sheet.Row(startRow - 1))
		headerRow = literalHeader
	}

	columns := domain.ResolveColumns(headerRow, tmpl.Mappings)
	keyCols := keyColumnIndices(tmpl, columns)
	if keys := tmpl.ResolveKeyColumns(); p.policy.RequireKeyColumn && len(keys) > 0 && len(keyCols) == 0 {
		cause := layoutCause(sheet, columns, startRow)
		if cause == "" {
			cause = missingKeyCause(sheet, keys, startRow)
		}
		return parsedFile{}, fmt.Errorf("%w: %s", domain.ErrNoValidRows, cause)
	}
	filter := domain.NewRowFilter(p.policy, literalHeader, keyCols)

	endRow := len(sheet.Rows)
	if tmpl.DataEndRow != nil && *tmpl.DataEndRow < endRow {
		endRow = *tmpl.DataEndRow
	}

	out := parsedFile{}
	verdicts := make(map[domain.RowVerdict]int)
	for n := startRow; n <= endRow; n++ {
		row := sheet.Row(n)
		verdict := filter.Classify(row)
		verdicts[verdict]++
		if verdict != domain.RowData {
			out.skipped++
			continue
		}

		data := make(map[string]any, len(columns))
		for _, col := range columns {
			if !col.Found() {
				continue
			}
			var raw any
			if col.Index < len(row) {
				raw = row[col.Index]
			}
			c := p.coercer.Coerce(raw, col.Mapping.DataType)
			if c.OK {
				data[col.Mapping.Key()] = c.Value
				continue
			}
			if c.Reason != "" && !p.coercer.IsSentinel(domain.CellText(raw)) && len(out.diagnostics) < maxStoredDiagnostics {
				out.diagnostics = append(out.diagnostics, domain.FieldDiagnostic{
					RowNumber: n,
					Field:     col.Mapping.Key(),
					RawValue:  domain.CellText(raw),
					Reason:    c.Reason,
				})
			}
		}
		if len(data) == 0 {
			out.skipped++
			continue
		}

		out.records = append(out.records, domain.NormalizedRecord{
			BatchID:    prov.batchID,
			TemplateID: tmpl.ID,
			SourceFile: file.FileName,
			UploadedBy: prov.uploadedBy,
			RowNumber:  n,
			Data:       data,
			IngestedAt: prov.ingestedAt,
		})
	}

	if len(out.records) == 0 {
		return out, fmt.Errorf("%w: %s", domain.ErrNoValidRows, probableCause(tmpl, sheet, columns, verdicts, startRow))
	}
	return out, nil
}

func keyColumnIndices(tmpl domain.ImportTemplate, columns []domain.ResolvedColumn) []int {
	keys := tmpl.ResolveKeyColumns()
	indices := make([]int, 0, len(keys))
	for _, key := range keys {
		for _, col := range columns {
			if col.Found() && col.Mapping.Key() == key {
				indices = append(indices, col.Index)
			}
		}
	}
	return indices
}

func probableCause(tmpl domain.ImportTemplate, sheet domain.Sheet, columns []domain.ResolvedColumn, verdicts map[domain.RowVerdict]int, startRow int) string {
	if cause := layoutCause(sheet, columns, startRow); cause != "" {
		return cause
	}
	if missing := verdicts[domain.RowMissingKey]; missing > 0 {
		return fmt.Sprintf("%d row(s) had no value in key columns %s", missing, strings.Join(tmpl.ResolveKeyColumns(), ", "))
	}
	return fmt.Sprintf("all rows of sheet %q were blank, repeated headers or had no usable values", sheet.Name)
}

// layoutCause explains a sheet whose layout does not match the template at
// all. It is empty when at least one column resolved.
func layoutCause(sheet domain.Sheet, columns []domain.ResolvedColumn, startRow int) string {
	if len(sheet.Rows) < startRow {
		return fmt.Sprintf("sheet %q has no rows from row %d on; check data_start_row", sheet.Name, startRow)
	}
	for _, col := range columns {
		if col.Found() {
			return ""
		}
	}
	return fmt.Sprintf("no template column was found in header row %d of sheet %q; check sheet_name and data_start_row", startRow-1, sheet.Name)
}

func missingKeyCause(sheet domain.Sheet, keys []string, startRow int) string {
	where := fmt.Sprintf("sheet %q", sheet.Name)
	if startRow > 1 {
		where = fmt.Sprintf("header row %d of sheet %q", startRow-1, sheet.Name)
	}
	return fmt.Sprintf("no recognizable key column (%s) in %s", strings.Join(keys, ", "), where)
}

func textRow(row []any) []string {
	cells := make([]string, len(row))
	for i, raw := range row {
		cells[i] = domain.CellText(raw)
	}
	return cells
}
