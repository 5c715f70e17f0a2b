package echo

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/sheet-import/internal/application/ingest"
	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

type TemplateHandler struct {
	useCase app.ManageTemplates
}

func NewTemplateHandler(useCase app.ManageTemplates) *TemplateHandler {
	return &TemplateHandler{useCase: useCase}
}

func (h *TemplateHandler) List(c echo.Context) error {
	out, err := h.useCase.List(c.Request().Context())
	if err != nil {
		return templateError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *TemplateHandler) Get(c echo.Context) error {
	out, err := h.useCase.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return templateError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *TemplateHandler) Create(c echo.Context) error {
	var req domain.TemplateParams
	if err := c.Bind(&req); err != nil {
		return badTemplateBody(c)
	}

	out, err := h.useCase.Create(c.Request().Context(), req)
	if err != nil {
		return templateError(c, err)
	}
	return c.JSON(http.StatusCreated, apiResponse{Data: out})
}

func (h *TemplateHandler) Update(c echo.Context) error {
	var req domain.TemplateParams
	if err := c.Bind(&req); err != nil {
		return badTemplateBody(c)
	}

	out, err := h.useCase.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return templateError(c, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *TemplateHandler) Delete(c echo.Context) error {
	if err := h.useCase.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return templateError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func badTemplateBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
		Code:    "bad_request",
		Message: "invalid request body",
	}})
}

func templateError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidTemplate):
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_template",
			Message: strings.TrimPrefix(err.Error(), app.ErrInvalidTemplate.Error()+": "),
		}})
	case errors.Is(err, app.ErrInvalidTemplateID):
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "invalid_template_id",
			Message: "id must be a valid UUID",
		}})
	case errors.Is(err, app.ErrTemplateNotFound):
		return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
			Code:    "not_found",
			Message: "import template not found",
		}})
	case errors.Is(err, app.ErrTemplateNameTaken):
		return c.JSON(http.StatusConflict, apiResponse{Error: &errorBody{
			Code:    "name_taken",
			Message: "an import template with this name already exists",
		}})
	case errors.Is(err, app.ErrTemplateInUse):
		return c.JSON(http.StatusConflict, apiResponse{Error: &errorBody{
			Code:    "template_in_use",
			Message: "import template still has imported records",
		}})
	}
	return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
		Code:    "internal_error",
		Message: "failed to process import template",
	}})
}
