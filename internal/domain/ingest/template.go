package ingest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const DefaultDataStartRow = 2

type DataType string

const (
	DataTypeString DataType = "String"
	DataTypeNumber DataType = "Number"
	DataTypeDate   DataType = "Date"
	DataTypeTime   DataType = "Time"
)

// ParseDataType canonicalises a type name. Empty input means String.
func ParseDataType(raw string) (DataType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "string":
		return DataTypeString, true
	case "number":
		return DataTypeNumber, true
	case "date":
		return DataTypeDate, true
	case "time":
		return DataTypeTime, true
	}
	return "", false
}

type ColumnMapping struct {
	ColumnHeader string
	VariableName string
	DataType     DataType
}

// Key is the normalized output field name this mapping writes to.
func (m ColumnMapping) Key() string {
	return FoldKey(m.VariableName)
}

type ImportTemplate struct {
	ID           string
	Name         string
	SheetName    string
	DataStartRow int
	DataEndRow   *int
	Mappings     []ColumnMapping
	KeyColumns   []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// conventionalKeyColumns are the identity fields personnel sheets carry
// when a template does not declare its own.
var conventionalKeyColumns = []string{
	"dni",
	"legajo",
	"cuil",
	"documento",
	"apellido",
	"nombre",
	"apellidoynombre",
	"nombreyapellido",
}

// ResolveKeyColumns returns the folded output keys that identify a row.
func (t ImportTemplate) ResolveKeyColumns() []string {
	if len(t.KeyColumns) > 0 {
		keys := make([]string, 0, len(t.KeyColumns))
		for _, name := range t.KeyColumns {
			keys = append(keys, FoldKey(name))
		}
		return keys
	}

	mapped := make(map[string]struct{}, len(t.Mappings))
	for _, m := range t.Mappings {
		mapped[m.Key()] = struct{}{}
	}
	keys := make([]string, 0)
	for _, key := range conventionalKeyColumns {
		if _, ok := mapped[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

type MappingParams struct {
	ColumnHeader string `json:"column_header" validate:"required"`
	VariableName string `json:"variable_name" validate:"required"`
	DataType     string `json:"data_type" validate:"datatype"`
}

type TemplateParams struct {
	Name         string          `json:"name" validate:"required"`
	SheetName    string          `json:"sheet_name"`
	DataStartRow *int            `json:"data_start_row" validate:"omitempty,gte=1"`
	DataEndRow   *int            `json:"data_end_row" validate:"omitempty,gte=1"`
	Mappings     []MappingParams `json:"mappings" validate:"required,min=1,dive"`
	KeyColumns   []string        `json:"key_columns" validate:"dive,required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("datatype", func(fl validator.FieldLevel) bool {
		_, ok := ParseDataType(fl.Field().String())
		return ok
	})
	return v
}

// NewImportTemplate validates params and builds a template with defaults applied.
func NewImportTemplate(params TemplateParams) (ImportTemplate, error) {
	params.Name = strings.TrimSpace(params.Name)
	for i := range params.Mappings {
		params.Mappings[i].ColumnHeader = strings.TrimSpace(params.Mappings[i].ColumnHeader)
		params.Mappings[i].VariableName = strings.TrimSpace(params.Mappings[i].VariableName)
	}
	for i := range params.KeyColumns {
		params.KeyColumns[i] = strings.TrimSpace(params.KeyColumns[i])
	}

	if err := validate.Struct(params); err != nil {
		return ImportTemplate{}, fmt.Errorf("%w: %s", ErrInvalidTemplate, describeValidation(err))
	}

	startRow := DefaultDataStartRow
	if params.DataStartRow != nil {
		startRow = *params.DataStartRow
	}
	if params.DataEndRow != nil && *params.DataEndRow < startRow {
		return ImportTemplate{}, fmt.Errorf("%w: data_end_row must not be before data_start_row", ErrInvalidTemplate)
	}

	mappings := make([]ColumnMapping, 0, len(params.Mappings))
	seen := make(map[string]string, len(params.Mappings))
	for _, p := range params.Mappings {
		dataType, _ := ParseDataType(p.DataType)
		m := ColumnMapping{ColumnHeader: p.ColumnHeader, VariableName: p.VariableName, DataType: dataType}
		if m.Key() == "" {
			return ImportTemplate{}, fmt.Errorf("%w: variable_name %q has no usable characters", ErrInvalidTemplate, p.VariableName)
		}
		if prev, dup := seen[m.Key()]; dup {
			return ImportTemplate{}, fmt.Errorf("%w: variable_name %q collides with %q", ErrInvalidTemplate, p.VariableName, prev)
		}
		seen[m.Key()] = p.VariableName
		mappings = append(mappings, m)
	}

	for _, key := range params.KeyColumns {
		if _, ok := seen[FoldKey(key)]; !ok {
			return ImportTemplate{}, fmt.Errorf("%w: key column %q is not a mapped variable_name", ErrInvalidTemplate, key)
		}
	}

	var endRow *int
	if params.DataEndRow != nil {
		v := *params.DataEndRow
		endRow = &v
	}

	return ImportTemplate{
		Name:         params.Name,
		SheetName:    strings.TrimSpace(params.SheetName),
		DataStartRow: startRow,
		DataEndRow:   endRow,
		Mappings:     mappings,
		KeyColumns:   append([]string(nil), params.KeyColumns...),
	}, nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Namespace()
		if idx := strings.Index(field, "."); idx >= 0 {
			field = field[idx+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s needs at least %s entry", field, fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be a positive integer", field))
		case "datatype":
			msgs = append(msgs, fmt.Sprintf("%s must be one of String, Number, Date, Time", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
