package ingest_test

import (
	"testing"

	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

func TestFoldKey(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Dirección General":       "direcciongeneral",
		"  Situación de Revista ": "situacionderevista",
		"DNI":                     "dni",
		"Año\tIngreso":            "anoingreso",
		"":                        "",
	}
	for in, want := range cases {
		if got := domain.FoldKey(in); got != want {
			t.Fatalf("FoldKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFoldTextKeepsInnerSpaces(t *testing.T) {
	t.Parallel()

	if got := domain.FoldText(" Categoría  Única "); got != "categoria  unica" {
		t.Fatalf("unexpected fold: %q", got)
	}
}
