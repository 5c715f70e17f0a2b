package ingest

// Sheet is a pre-parsed worksheet. Cells are float64 for numeric cells and
// string for everything else; short rows are not padded.
type Sheet struct {
	Name string
	Rows [][]any
}

// Row returns the 1-indexed row n, or nil past the end of the sheet.
func (s Sheet) Row(n int) []any {
	if n < 1 || n > len(s.Rows) {
		return nil
	}
	return s.Rows[n-1]
}

// Width is the number of cells in the widest row.
func (s Sheet) Width() int {
	width := 0
	for _, row := range s.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
