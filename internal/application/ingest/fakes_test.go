package ingest_test

import (
	"context"
	"errors"
	"sync"

	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

const (
	plantaID    = "b5c0a7c2-57d5-4f1e-9d0e-1e9e0b7f6a10"
	contratosID = "0f4e3c3a-2b8e-4f6e-9d6a-7a0c1c2e9b44"
	missingID   = "6a1d2f57-3c0e-4b7e-8e55-3f9f3d6c2a01"
)

type fakeTemplates struct {
	byID     map[string]*domain.ImportTemplate
	first    *domain.ImportTemplate
	err      error
	getCalls int
}

func newFakeTemplates(templates ...domain.ImportTemplate) *fakeTemplates {
	f := &fakeTemplates{byID: make(map[string]*domain.ImportTemplate)}
	for i := range templates {
		tmpl := templates[i]
		f.byID[tmpl.ID] = &tmpl
		if f.first == nil {
			f.first = &tmpl
		}
	}
	return f
}

func (f *fakeTemplates) GetByID(ctx context.Context, id string) (*domain.ImportTemplate, error) {
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	tmpl, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return tmpl, nil
}

func (f *fakeTemplates) First(ctx context.Context) (*domain.ImportTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.first == nil {
		return nil, domain.ErrTemplateNotFound
	}
	return f.first, nil
}

type fakeReader struct {
	sheets map[string]domain.Sheet
	errs   map[string]error
	asked  map[string]string
}

func (f *fakeReader) ReadSheet(ctx context.Context, path string, sheetName string) (domain.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return domain.Sheet{}, err
	}
	if f.asked == nil {
		f.asked = make(map[string]string)
	}
	f.asked[path] = sheetName
	if err, ok := f.errs[path]; ok {
		return domain.Sheet{}, err
	}
	sheet, ok := f.sheets[path]
	if !ok {
		return domain.Sheet{}, domain.ErrUnreadableFile
	}
	return sheet, nil
}

type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string][]domain.NormalizedRecord
	err     error
	calls   int
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[string][]domain.NormalizedRecord)}
}

func sourceKey(sourceFile, templateID string) string {
	return sourceFile + "|" + templateID
}

func (f *fakeRecordStore) ReplaceBySource(ctx context.Context, req domain.ReplaceRequest) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.records[sourceKey(req.SourceFile, req.TemplateID)] = append([]domain.NormalizedRecord(nil), req.Records...)
	return int64(len(req.Records)), nil
}

func (f *fakeRecordStore) CountByTemplate(ctx context.Context, templateID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var count int64
	for _, recs := range f.records {
		for _, r := range recs {
			if r.TemplateID == templateID {
				count++
			}
		}
	}
	return count, nil
}

func (f *fakeRecordStore) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, recs := range f.records {
		n += len(recs)
	}
	return n
}

type fakeBatches struct {
	created []domain.ImportBatch
	err     error
}

func (f *fakeBatches) Create(ctx context.Context, batch domain.ImportBatch) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, batch)
	return nil
}

func (f *fakeBatches) GetByID(ctx context.Context, id string) (*domain.ImportBatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.created {
		if f.created[i].ID == id {
			return &f.created[i], nil
		}
	}
	return nil, domain.ErrBatchNotFound
}

type fakeNotifier struct {
	events []domain.BatchImported
	err    error
}

func (f *fakeNotifier) NotifyBatchImported(ctx context.Context, event domain.BatchImported) error {
	f.events = append(f.events, event)
	return f.err
}

var errBoom = errors.New("boom")

func plantaTemplate() domain.ImportTemplate {
	return domain.ImportTemplate{
		ID:           plantaID,
		Name:         "Planta Permanente",
		SheetName:    "Hoja1",
		DataStartRow: 2,
		Mappings: []domain.ColumnMapping{
			{ColumnHeader: "Legajo", VariableName: "legajo", DataType: domain.DataTypeNumber},
			{ColumnHeader: "Apellido y Nombre", VariableName: "Apellido y Nombre", DataType: domain.DataTypeString},
			{ColumnHeader: "DNI", VariableName: "dni", DataType: domain.DataTypeNumber},
			{ColumnHeader: "Fecha Ingreso", VariableName: "fechaIngreso", DataType: domain.DataTypeDate},
			{ColumnHeader: "Sueldo", VariableName: "sueldo", DataType: domain.DataTypeNumber},
		},
	}
}

var plantaHeader = []any{"Legajo", "Apellido y Nombre", "DNI", "Fecha Ingreso", "Sueldo"}

// plantaSheet has two real rows (2 and 5) among a blank row, a repeated
// header and a subtotal row without identity values.
func plantaSheet() domain.Sheet {
	return domain.Sheet{
		Name: "Hoja1",
		Rows: [][]any{
			plantaHeader,
			{float64(1001), "Pérez, Juan", float64(30111222), float64(44562), "1.234,56"},
			{},
			plantaHeader,
			{float64(1002), "Gómez, Ana", "S/D", "15/03/2021", "abc"},
			{"", "", "-", "Total", float64(999999)},
		},
	}
}
