package echo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/sheet-import/internal/application/ingest"
)

// HeaderUserID carries the authenticated uploader, set by the auth proxy.
const HeaderUserID = "X-User-ID"

type uploadStager interface {
	Stage(ctx context.Context, fileName string, src io.Reader) (string, error)
	Remove(path string)
}

type ImportHandler struct {
	importSheets app.ImportSpreadsheets
	getBatch     app.GetImportBatch
	staging      uploadStager
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func NewImportHandler(importSheets app.ImportSpreadsheets, getBatch app.GetImportBatch, staging uploadStager) *ImportHandler {
	return &ImportHandler{importSheets: importSheets, getBatch: getBatch, staging: staging}
}

func (h *ImportHandler) ImportSpreadsheets(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "request must be multipart/form-data",
		}})
	}
	defer func() { _ = form.RemoveAll() }()

	headers := form.File["files"]
	templateIDs, err := parseTemplateIDs(form.Value["template_ids"], len(headers))
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_template_ids",
			Message: err.Error(),
		}})
	}

	var staged []string
	defer func() {
		for _, path := range staged {
			h.staging.Remove(path)
		}
	}()

	ctx := c.Request().Context()
	files := make([]app.UploadedFile, 0, len(headers))
	for i, fh := range headers {
		path, err := h.stage(ctx, fh)
		if err != nil {
			log.Printf("failed to stage upload %s: %v", fh.Filename, err)
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "bad_upload",
				Message: "could not read uploaded file " + fh.Filename,
			}})
		}
		staged = append(staged, path)

		file := app.UploadedFile{FileName: fh.Filename, Path: path}
		if i < len(templateIDs) {
			file.TemplateID = templateIDs[i]
		}
		files = append(files, file)
	}

	out, err := h.importSheets.Execute(ctx, app.ImportSpreadsheetsInput{
		UploadedBy:        c.Request().Header.Get(HeaderUserID),
		DefaultTemplateID: firstValue(form.Value["template_id"]),
		Files:             files,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMissingUploader):
			return c.JSON(http.StatusUnauthorized, apiResponse{Error: &errorBody{
				Code:    "unauthorized",
				Message: HeaderUserID + " header is required",
			}})
		case errors.Is(err, app.ErrNoFiles):
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "no_files",
				Message: "at least one file is required in the files field",
			}})
		}
		log.Printf("import failed: %v", err)
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to import spreadsheets",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *ImportHandler) GetImportBatch(c echo.Context) error {
	out, err := h.getBatch.Execute(c.Request().Context(), app.GetImportBatchInput{
		ID: c.Param("id"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidBatchID) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_batch_id",
				Message: "id must be a valid UUID",
			}})
		}
		if errors.Is(err, app.ErrBatchNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "import batch not found",
			}})
		}

		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to get import batch",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *ImportHandler) stage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return h.staging.Stage(ctx, fh.Filename, src)
}

// parseTemplateIDs accepts template_ids as repeated form fields or as one
// JSON array, aligned by position with the uploaded files.
func parseTemplateIDs(values []string, fileCount int) ([]string, error) {
	ids := values
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		if err := json.Unmarshal([]byte(values[0]), &ids); err != nil {
			return nil, fmt.Errorf("template_ids must be a JSON array of strings: %v", err)
		}
	}
	if fileCount > 0 && len(ids) > fileCount {
		return nil, fmt.Errorf("template_ids has %d entries for %d files", len(ids), fileCount)
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strings.TrimSpace(id)
	}
	return out, nil
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
