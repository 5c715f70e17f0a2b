package echo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/sheet-import/internal/application/ingest"
	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
	httpecho "github.com/mohammadpnp/sheet-import/internal/interfaces/http/echo"
)

const templateID = "b5c0a7c2-57d5-4f1e-9d0e-1e9e0b7f6a10"

type fakeManageTemplates struct {
	out     app.TemplateOutput
	err     error
	created domain.TemplateParams
}

func (f *fakeManageTemplates) List(ctx context.Context) ([]app.TemplateOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []app.TemplateOutput{f.out}, nil
}

func (f *fakeManageTemplates) Get(ctx context.Context, id string) (app.TemplateOutput, error) {
	if f.err != nil {
		return app.TemplateOutput{}, f.err
	}
	return f.out, nil
}

func (f *fakeManageTemplates) Create(ctx context.Context, params domain.TemplateParams) (app.TemplateOutput, error) {
	f.created = params
	if f.err != nil {
		return app.TemplateOutput{}, f.err
	}
	return f.out, nil
}

func (f *fakeManageTemplates) Update(ctx context.Context, id string, params domain.TemplateParams) (app.TemplateOutput, error) {
	if f.err != nil {
		return app.TemplateOutput{}, f.err
	}
	return f.out, nil
}

func (f *fakeManageTemplates) Delete(ctx context.Context, id string) error {
	return f.err
}

func TestTemplateHandlerCreate(t *testing.T) {
	t.Parallel()

	useCase := &fakeManageTemplates{out: app.TemplateOutput{ID: templateID, Name: "Planta"}}
	e := echo.New()
	httpecho.RegisterRoutes(e, nil, httpecho.NewTemplateHandler(useCase))

	body := []byte(`{"name":"Planta","sheet_name":"Hoja1","data_start_row":3,"mappings":[{"column_header":"DNI","variable_name":"dni","data_type":"number"}],"key_columns":["dni"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import-templates", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if useCase.created.Name != "Planta" || useCase.created.DataStartRow == nil || *useCase.created.DataStartRow != 3 {
		t.Fatalf("unexpected params: %#v", useCase.created)
	}
	if len(useCase.created.Mappings) != 1 || useCase.created.Mappings[0].ColumnHeader != "DNI" {
		t.Fatalf("unexpected mappings: %#v", useCase.created.Mappings)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	if got["data"].(map[string]any)["id"] != templateID {
		t.Fatalf("unexpected response: %#v", got)
	}
}

func TestTemplateHandlerBadJSON(t *testing.T) {
	t.Parallel()

	e := echo.New()
	httpecho.RegisterRoutes(e, nil, httpecho.NewTemplateHandler(&fakeManageTemplates{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import-templates", bytes.NewReader([]byte(`{"name":`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTemplateHandlerErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		method string
		path   string
		err    error
		code   int
	}{
		{name: "invalid template", method: http.MethodPost, path: "/api/v1/import-templates", err: fmt.Errorf("%w: mappings are required", app.ErrInvalidTemplate), code: http.StatusBadRequest},
		{name: "invalid id", method: http.MethodGet, path: "/api/v1/import-templates/nope", err: app.ErrInvalidTemplateID, code: http.StatusBadRequest},
		{name: "not found", method: http.MethodGet, path: "/api/v1/import-templates/" + templateID, err: app.ErrTemplateNotFound, code: http.StatusNotFound},
		{name: "name taken", method: http.MethodPut, path: "/api/v1/import-templates/" + templateID, err: fmt.Errorf("%w: %q", app.ErrTemplateNameTaken, "Planta"), code: http.StatusConflict},
		{name: "in use", method: http.MethodDelete, path: "/api/v1/import-templates/" + templateID, err: app.ErrTemplateInUse, code: http.StatusConflict},
		{name: "internal", method: http.MethodGet, path: "/api/v1/import-templates", err: errors.New("boom"), code: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := echo.New()
			httpecho.RegisterRoutes(e, nil, httpecho.NewTemplateHandler(&fakeManageTemplates{err: tc.err}))

			req := httptest.NewRequest(tc.method, tc.path, bytes.NewReader([]byte(`{"name":"Planta"}`)))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
		})
	}
}

func TestTemplateHandlerDelete(t *testing.T) {
	t.Parallel()

	e := echo.New()
	httpecho.RegisterRoutes(e, nil, httpecho.NewTemplateHandler(&fakeManageTemplates{}))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/import-templates/"+templateID, nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
