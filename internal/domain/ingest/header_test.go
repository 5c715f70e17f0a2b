package ingest_test

import (
	"testing"

	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

func TestResolveColumn(t *testing.T) {
	t.Parallel()

	header := []string{"Legajo", " apellido y nombre ", "Dirección General", "Sueldo"}

	cases := []struct {
		name   string
		header string
		want   int
		found  bool
	}{
		{name: "case-insensitive match", header: "Apellido Y Nombre", want: 1, found: true},
		{name: "diacritic and space fold", header: "DIRECCION  GENERAL", want: 2, found: true},
		{name: "column letter", header: "C", want: 2, found: true},
		{name: "column letter out of range", header: "Z", want: -1, found: false},
		{name: "missing header", header: "CUIL", want: -1, found: false},
		{name: "lowercase letter is not a column", header: "d", want: -1, found: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := domain.ResolveColumn(header, domain.ColumnMapping{ColumnHeader: tc.header, VariableName: "x"})
			if ok != tc.found || got != tc.want {
				t.Fatalf("ResolveColumn(%q) = %d, %v; want %d, %v", tc.header, got, ok, tc.want, tc.found)
			}
		})
	}
}

func TestResolveColumnPrefersHeaderTextOverLetter(t *testing.T) {
	t.Parallel()

	header := []string{"Nombre", "A", "Cargo"}
	got, ok := domain.ResolveColumn(header, domain.ColumnMapping{ColumnHeader: "A", VariableName: "a"})
	if !ok || got != 1 {
		t.Fatalf("expected literal header A at index 1, got %d, %v", got, ok)
	}
}

func TestResolveColumnsMarksMissing(t *testing.T) {
	t.Parallel()

	cols := domain.ResolveColumns([]string{"DNI"}, []domain.ColumnMapping{
		{ColumnHeader: "DNI", VariableName: "dni"},
		{ColumnHeader: "Legajo", VariableName: "legajo"},
	})
	if !cols[0].Found() || cols[0].Index != 0 {
		t.Fatalf("expected DNI at 0, got %#v", cols[0])
	}
	if cols[1].Found() {
		t.Fatalf("expected legajo missing, got %#v", cols[1])
	}
}
