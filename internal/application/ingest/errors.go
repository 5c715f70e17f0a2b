package ingest

import "errors"

var (
	ErrNoFiles           = errors.New("no files uploaded")
	ErrMissingUploader   = errors.New("uploader identity is required")
	ErrPersistImport     = errors.New("failed to persist import")
	ErrLoadTemplate      = errors.New("failed to load import template")
	ErrInvalidTemplate   = errors.New("invalid import template")
	ErrInvalidTemplateID = errors.New("invalid template id")
	ErrTemplateNotFound  = errors.New("import template not found")
	ErrTemplateNameTaken = errors.New("import template name already in use")
	ErrTemplateInUse     = errors.New("import template is referenced by imported records")
	ErrSaveTemplate      = errors.New("failed to save import template")
	ErrInvalidBatchID    = errors.New("invalid batch id")
	ErrBatchNotFound     = errors.New("import batch not found")
	ErrGetImportBatch    = errors.New("failed to get import batch")
)
