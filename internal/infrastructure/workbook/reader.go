package workbook

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
	"github.com/xuri/excelize/v2"
)

// Reader loads worksheets from .xlsx/.xlsm files through excelize and from
// legacy .xls files through extrame/xls.
type Reader struct {
	// MaxRows bounds how many rows are read from a single sheet. Zero means no bound.
	MaxRows int
}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) ReadSheet(ctx context.Context, path string, sheetName string) (domain.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return domain.Sheet{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		return r.readXLS(path, sheetName)
	default:
		return r.readXLSX(path, sheetName)
	}
}

func (r *Reader) readXLSX(path, sheetName string) (domain.Sheet, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return domain.Sheet{}, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	defer func() { _ = file.Close() }()

	name, err := pickSheet(file.GetSheetList(), sheetName)
	if err != nil {
		return domain.Sheet{}, err
	}

	rows, err := file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.Sheet{}, fmt.Errorf("%w: read sheet %q: %v", domain.ErrUnreadableFile, name, err)
	}
	if r.MaxRows > 0 && len(rows) > r.MaxRows {
		rows = rows[:r.MaxRows]
	}

	sheet := domain.Sheet{Name: name, Rows: make([][]any, len(rows))}
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, value := range row {
			cells[j] = xlsxCell(file, name, i, j, value)
		}
		sheet.Rows[i] = cells
	}
	return sheet, nil
}

// xlsxCell keeps text cells as strings so values like "00123" survive, and
// turns numeric cells into float64.
func xlsxCell(file *excelize.File, sheet string, row, col int, value string) any {
	if value == "" {
		return value
	}
	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return value
	}
	cellType, err := file.GetCellType(sheet, ref)
	if err != nil {
		return value
	}
	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}

func (r *Reader) readXLS(path, sheetName string) (domain.Sheet, error) {
	book, err := xls.Open(path, "utf-8")
	if err != nil {
		return domain.Sheet{}, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}

	names := make([]string, 0, book.NumSheets())
	for i := 0; i < book.NumSheets(); i++ {
		if ws := book.GetSheet(i); ws != nil {
			names = append(names, ws.Name)
		}
	}
	name, err := pickSheet(names, sheetName)
	if err != nil {
		return domain.Sheet{}, err
	}

	var ws *xls.WorkSheet
	for i := 0; i < book.NumSheets(); i++ {
		if candidate := book.GetSheet(i); candidate != nil && candidate.Name == name {
			ws = candidate
			break
		}
	}
	if ws == nil {
		return domain.Sheet{}, fmt.Errorf("%w: %q", domain.ErrSheetNotFound, name)
	}

	lastRow := int(ws.MaxRow)
	if r.MaxRows > 0 && lastRow >= r.MaxRows {
		lastRow = r.MaxRows - 1
	}

	sheet := domain.Sheet{Name: name}
	for i := 0; i <= lastRow; i++ {
		row := xlsRow(ws, i)
		if row == nil {
			sheet.Rows = append(sheet.Rows, nil)
			continue
		}
		cells := make([]any, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = xlsCell(row.Col(j))
		}
		sheet.Rows = append(sheet.Rows, cells)
	}
	sheet.Rows = trimTrailingEmptyRows(sheet.Rows)
	return sheet, nil
}

// xlsRow returns nil for rows the sheet never stored; WorkSheet.Row
// dereferences them without a check.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

var plainDecimal = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// extrame renders built-in date formats as year.month and drops the day.
var truncatedDate = regexp.MustCompile(`^\d{4}\.\d{2}$`)

var xlsEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// xlsCell recovers cell types from the text extrame/xls renders. Numbers
// come back as float64 when the text is exactly how a number renders, so
// "00123" stays text. Cells under custom date formats arrive as RFC3339
// and are turned back into serials.
func xlsCell(text string) any {
	switch {
	case text == "" || text == "FormulaCol":
		return ""
	case truncatedDate.MatchString(text):
		return text
	case plainDecimal.MatchString(text):
		v, err := strconv.ParseFloat(text, 64)
		if err == nil && strconv.FormatFloat(v, 'f', -1, 64) == text {
			return v
		}
		return text
	}
	if t, err := time.Parse(time.RFC3339, text); err == nil && t.After(xlsEpoch) {
		return t.Sub(xlsEpoch).Hours() / 24
	}
	return text
}

// pickSheet resolves the wanted sheet by exact name, then by a trimmed
// case-insensitive match. An empty name picks the first sheet.
func pickSheet(available []string, wanted string) (string, error) {
	if len(available) == 0 {
		return "", domain.ErrEmptyWorkbook
	}
	if strings.TrimSpace(wanted) == "" {
		return available[0], nil
	}
	for _, name := range available {
		if name == wanted {
			return name, nil
		}
	}
	for _, name := range available {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(wanted)) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: %s)", domain.ErrSheetNotFound, wanted, strings.Join(available, ", "))
}

func trimTrailingEmptyRows(rows [][]any) [][]any {
	for len(rows) > 0 && rowEmpty(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func rowEmpty(row []any) bool {
	for _, cell := range row {
		if s, ok := cell.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		if cell != nil {
			return false
		}
	}
	return true
}
