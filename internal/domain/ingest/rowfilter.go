package ingest

import "strings"

type RowVerdict int

const (
	RowData RowVerdict = iota
	RowBlank
	RowRepeatedHeader
	RowHeaderLike
	RowMissingKey
)

func (v RowVerdict) String() string {
	switch v {
	case RowData:
		return "data"
	case RowBlank:
		return "blank"
	case RowRepeatedHeader:
		return "repeated header"
	case RowHeaderLike:
		return "header-like"
	case RowMissingKey:
		return "missing key column"
	}
	return "unknown"
}

// RowPolicy decides which heuristics drop a row. Both upload flows of the
// legacy dashboard are expressed as named policies of the same filter.
type RowPolicy struct {
	Name             string
	RequireKeyColumn bool
	HeaderKeywords   []string
	Sentinels        []string
}

var DefaultHeaderKeywords = []string{
	"apellido",
	"nombre",
	"dni",
	"legajo",
	"dependencia",
	"fecha",
	"cargo",
	"documento",
	"cuil",
	"categoria",
	"secretaria",
	"situacion",
	"revista",
}

var StrictPolicy = RowPolicy{
	Name:             "strict",
	RequireKeyColumn: true,
	HeaderKeywords:   DefaultHeaderKeywords,
	Sentinels:        DefaultSentinels,
}

var PermissivePolicy = RowPolicy{
	Name:      "permissive",
	Sentinels: DefaultSentinels,
}

// PolicyByName returns the named policy; unknown names fall back to strict.
func PolicyByName(name string) (RowPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrictPolicy.Name:
		return StrictPolicy, true
	case PermissivePolicy.Name:
		return PermissivePolicy, true
	}
	return StrictPolicy, false
}

type RowFilter struct {
	policy   RowPolicy
	coercer  Coercer
	header   []string
	keyCols  []int
	keywords []string
}

// NewRowFilter prepares a filter for one file. headerRow is the literal header
// row (may be nil when the sheet has none); keyColumns are source indices.
func NewRowFilter(policy RowPolicy, headerRow []string, keyColumns []int) RowFilter {
	header := make([]string, len(headerRow))
	for i, cell := range headerRow {
		header[i] = strings.ToLower(strings.TrimSpace(cell))
	}
	keywords := make([]string, 0, len(policy.HeaderKeywords))
	for _, kw := range policy.HeaderKeywords {
		keywords = append(keywords, FoldText(kw))
	}
	return RowFilter{
		policy:   policy,
		coercer:  NewCoercer(policy.Sentinels),
		header:   trimTrailingBlank(header),
		keyCols:  keyColumns,
		keywords: keywords,
	}
}

func (f RowFilter) IsRealDataRow(row []any) bool {
	return f.Classify(row) == RowData
}

func (f RowFilter) Classify(row []any) RowVerdict {
	cells := make([]string, len(row))
	blank := true
	for i, raw := range row {
		cells[i] = strings.TrimSpace(CellText(raw))
		if cells[i] != "" {
			blank = false
		}
	}
	if blank {
		return RowBlank
	}

	if f.isHeaderRepeat(cells) {
		return RowRepeatedHeader
	}
	if f.looksLikeHeader(cells) {
		return RowHeaderLike
	}
	if f.policy.RequireKeyColumn && len(f.keyCols) > 0 && !f.hasKeyValue(cells) {
		return RowMissingKey
	}
	return RowData
}

func (f RowFilter) isHeaderRepeat(cells []string) bool {
	if len(f.header) == 0 {
		return false
	}
	lowered := make([]string, len(cells))
	for i, c := range cells {
		lowered[i] = strings.ToLower(c)
	}
	lowered = trimTrailingBlank(lowered)
	if len(lowered) != len(f.header) {
		return false
	}
	for i := range lowered {
		if lowered[i] != f.header[i] {
			return false
		}
	}
	return true
}

func (f RowFilter) looksLikeHeader(cells []string) bool {
	if len(f.keywords) == 0 {
		return false
	}

	for _, idx := range f.keyCols {
		if idx < len(cells) && f.containsKeyword(cells[idx]) {
			return true
		}
	}

	nonBlank, hits := 0, 0
	for _, c := range cells {
		if c == "" {
			continue
		}
		nonBlank++
		if f.containsKeyword(c) {
			hits++
		}
	}
	return hits >= 2 && hits*2 >= nonBlank
}

func (f RowFilter) containsKeyword(cell string) bool {
	folded := FoldText(cell)
	if folded == "" {
		return false
	}
	for _, kw := range f.keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

func (f RowFilter) hasKeyValue(cells []string) bool {
	for _, idx := range f.keyCols {
		if idx < len(cells) && !f.coercer.IsSentinel(cells[idx]) {
			return true
		}
	}
	return false
}

func trimTrailingBlank(cells []string) []string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}
