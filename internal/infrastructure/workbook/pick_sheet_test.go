package workbook

import (
	"errors"
	"testing"

	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

func TestPickSheet(t *testing.T) {
	t.Parallel()

	available := []string{"Resumen", " Planta Permanente ", "planta"}

	cases := []struct {
		wanted string
		want   string
	}{
		{wanted: "", want: "Resumen"},
		{wanted: "planta", want: "planta"},
		{wanted: "PLANTA PERMANENTE", want: " Planta Permanente "},
		{wanted: "resumen", want: "Resumen"},
	}
	for _, tc := range cases {
		got, err := pickSheet(available, tc.wanted)
		if err != nil {
			t.Fatalf("pickSheet(%q): unexpected error: %v", tc.wanted, err)
		}
		if got != tc.want {
			t.Fatalf("pickSheet(%q) = %q, want %q", tc.wanted, got, tc.want)
		}
	}
}

func TestPickSheetErrors(t *testing.T) {
	t.Parallel()

	if _, err := pickSheet(nil, "x"); !errors.Is(err, domain.ErrEmptyWorkbook) {
		t.Fatalf("expected ErrEmptyWorkbook, got %v", err)
	}
	if _, err := pickSheet([]string{"A"}, "B"); !errors.Is(err, domain.ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestTrimTrailingEmptyRows(t *testing.T) {
	t.Parallel()

	rows := [][]any{{"a"}, nil, {"", " "}, {"b"}, {""}, nil}
	got := trimTrailingEmptyRows(rows)
	if len(got) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(got))
	}
}

func TestXLSCell(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want any
	}{
		{text: "", want: ""},
		{text: "FormulaCol", want: ""},
		{text: "1001", want: float64(1001)},
		{text: "1.234", want: 1.234},
		{text: "-2500.5", want: -2500.5},
		{text: "00123", want: "00123"},
		{text: "1.50", want: "1.50"},
		{text: "2022.01", want: "2022.01"},
		{text: "2023-01-01T00:00:00Z", want: float64(44927)},
		{text: "2022-01-01T12:00:00Z", want: 44562.5},
		{text: "Juan Pérez", want: "Juan Pérez"},
	}
	for _, tc := range cases {
		if got := xlsCell(tc.text); got != tc.want {
			t.Fatalf("xlsCell(%q) = %#v, want %#v", tc.text, got, tc.want)
		}
	}
}
