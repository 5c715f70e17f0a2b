package ingest

import "strings"

// ResolvedColumn pairs a mapping with the source column it reads from.
// Index is -1 when the sheet does not carry the column.
type ResolvedColumn struct {
	Mapping ColumnMapping
	Index   int
}

func (c ResolvedColumn) Found() bool {
	return c.Index >= 0
}

// ResolveColumn finds the source column for mapping in headerRow. Header
// text wins over the column-letter fallback; a missing column is not an error.
func ResolveColumn(headerRow []string, mapping ColumnMapping) (int, bool) {
	want := strings.TrimSpace(mapping.ColumnHeader)
	if want == "" {
		return -1, false
	}

	for i, cell := range headerRow {
		if strings.EqualFold(strings.TrimSpace(cell), want) {
			return i, true
		}
	}

	wantKey := FoldKey(want)
	for i, cell := range headerRow {
		if FoldKey(cell) == wantKey {
			return i, true
		}
	}

	if idx, ok := columnLetterIndex(want); ok && idx < len(headerRow) {
		return idx, true
	}
	return -1, false
}

// ResolveColumns resolves every mapping once for a file.
func ResolveColumns(headerRow []string, mappings []ColumnMapping) []ResolvedColumn {
	resolved := make([]ResolvedColumn, 0, len(mappings))
	for _, m := range mappings {
		idx, ok := ResolveColumn(headerRow, m)
		if !ok {
			idx = -1
		}
		resolved = append(resolved, ResolvedColumn{Mapping: m, Index: idx})
	}
	return resolved
}

func columnLetterIndex(s string) (int, bool) {
	if len(s) != 1 || s[0] < 'A' || s[0] > 'Z' {
		return 0, false
	}
	return int(s[0] - 'A'), true
}
