package ingest

import "errors"

var (
	ErrInvalidTemplate = errors.New("invalid import template")
	ErrSheetNotFound   = errors.New("sheet not found")
	ErrEmptyWorkbook   = errors.New("workbook has no sheets")
	ErrUnreadableFile  = errors.New("unreadable workbook")
	ErrNoValidRows     = errors.New("no valid rows")

	ErrTemplateNotFound     = errors.New("import template not found")
	ErrTemplateNameConflict = errors.New("import template name already exists")
	ErrTemplateReferenced   = errors.New("import template is referenced by records")
	ErrBatchNotFound        = errors.New("import batch not found")
)
