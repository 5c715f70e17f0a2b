package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

type MappingOutput struct {
	ColumnHeader string `json:"column_header"`
	VariableName string `json:"variable_name"`
	DataType     string `json:"data_type"`
}

type TemplateOutput struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SheetName    string          `json:"sheet_name,omitempty"`
	DataStartRow int             `json:"data_start_row"`
	DataEndRow   *int            `json:"data_end_row,omitempty"`
	Mappings     []MappingOutput `json:"mappings"`
	KeyColumns   []string        `json:"key_columns"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ManageTemplates is the admin surface over import templates.
type ManageTemplates interface {
	List(ctx context.Context) ([]TemplateOutput, error)
	Get(ctx context.Context, id string) (TemplateOutput, error)
	Create(ctx context.Context, params domain.TemplateParams) (TemplateOutput, error)
	Update(ctx context.Context, id string, params domain.TemplateParams) (TemplateOutput, error)
	Delete(ctx context.Context, id string) error
}

type recordCounter interface {
	CountByTemplate(ctx context.Context, templateID string) (int64, error)
}

type manageTemplates struct {
	repo    domain.TemplateRepository
	records recordCounter
}

func NewManageTemplates(repo domain.TemplateRepository, records recordCounter) ManageTemplates {
	return &manageTemplates{repo: repo, records: records}
}

func (uc *manageTemplates) List(ctx context.Context) ([]TemplateOutput, error) {
	templates, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadTemplate, err)
	}
	out := make([]TemplateOutput, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateOutput(t))
	}
	return out, nil
}

func (uc *manageTemplates) Get(ctx context.Context, id string) (TemplateOutput, error) {
	tmpl, err := uc.load(ctx, id)
	if err != nil {
		return TemplateOutput{}, err
	}
	return toTemplateOutput(*tmpl), nil
}

func (uc *manageTemplates) Create(ctx context.Context, params domain.TemplateParams) (TemplateOutput, error) {
	tmpl, err := domain.NewImportTemplate(params)
	if err != nil {
		return TemplateOutput{}, fmt.Errorf("%w: %s", ErrInvalidTemplate, invalidDetail(err))
	}
	if err := uc.ensureNameFree(ctx, tmpl.Name, ""); err != nil {
		return TemplateOutput{}, err
	}
	if err := uc.repo.Create(ctx, &tmpl); err != nil {
		return TemplateOutput{}, saveTemplateError(err, tmpl.Name)
	}
	return toTemplateOutput(tmpl), nil
}

func (uc *manageTemplates) Update(ctx context.Context, id string, params domain.TemplateParams) (TemplateOutput, error) {
	current, err := uc.load(ctx, id)
	if err != nil {
		return TemplateOutput{}, err
	}

	tmpl, err := domain.NewImportTemplate(params)
	if err != nil {
		return TemplateOutput{}, fmt.Errorf("%w: %s", ErrInvalidTemplate, invalidDetail(err))
	}
	if err := uc.ensureNameFree(ctx, tmpl.Name, current.ID); err != nil {
		return TemplateOutput{}, err
	}

	tmpl.ID = current.ID
	tmpl.CreatedAt = current.CreatedAt
	if err := uc.repo.Update(ctx, &tmpl); err != nil {
		return TemplateOutput{}, saveTemplateError(err, tmpl.Name)
	}
	return toTemplateOutput(tmpl), nil
}

func (uc *manageTemplates) Delete(ctx context.Context, id string) error {
	tmpl, err := uc.load(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := uc.records.CountByTemplate(ctx, tmpl.ID)
	if err != nil {
		return fmt.Errorf("%w: count records: %v", ErrSaveTemplate, err)
	}
	if inUse > 0 {
		return fmt.Errorf("%w: %d record(s)", ErrTemplateInUse, inUse)
	}

	if err := uc.repo.Delete(ctx, tmpl.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrTemplateReferenced):
			return fmt.Errorf("%w: %v", ErrTemplateInUse, err)
		case errors.Is(err, domain.ErrTemplateNotFound):
			return ErrTemplateNotFound
		}
		return fmt.Errorf("%w: %v", ErrSaveTemplate, err)
	}
	return nil
}

// saveTemplateError covers a concurrent writer taking the name between the
// NameTaken check and the write.
func saveTemplateError(err error, name string) error {
	if errors.Is(err, domain.ErrTemplateNameConflict) {
		return fmt.Errorf("%w: %q", ErrTemplateNameTaken, name)
	}
	return fmt.Errorf("%w: %v", ErrSaveTemplate, err)
}

func (uc *manageTemplates) load(ctx context.Context, id string) (*domain.ImportTemplate, error) {
	if !isUUID(id) {
		return nil, ErrInvalidTemplateID
	}
	tmpl, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrLoadTemplate, err)
	}
	return tmpl, nil
}

func (uc *manageTemplates) ensureNameFree(ctx context.Context, name, excludeID string) error {
	taken, err := uc.repo.NameTaken(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadTemplate, err)
	}
	if taken {
		return fmt.Errorf("%w: %q", ErrTemplateNameTaken, name)
	}
	return nil
}

func invalidDetail(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrInvalidTemplate.Error()+": ")
}

func toTemplateOutput(t domain.ImportTemplate) TemplateOutput {
	mappings := make([]MappingOutput, 0, len(t.Mappings))
	for _, m := range t.Mappings {
		mappings = append(mappings, MappingOutput{
			ColumnHeader: m.ColumnHeader,
			VariableName: m.VariableName,
			DataType:     string(m.DataType),
		})
	}
	return TemplateOutput{
		ID:           t.ID,
		Name:         t.Name,
		SheetName:    t.SheetName,
		DataStartRow: t.DataStartRow,
		DataEndRow:   t.DataEndRow,
		Mappings:     mappings,
		KeyColumns:   nonNil(t.KeyColumns),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
