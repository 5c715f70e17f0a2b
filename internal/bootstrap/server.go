package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	app "github.com/mohammadpnp/sheet-import/internal/application/ingest"
	"github.com/mohammadpnp/sheet-import/internal/config"
	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
	"github.com/mohammadpnp/sheet-import/internal/infrastructure/file"
	"github.com/mohammadpnp/sheet-import/internal/infrastructure/repository"
	"github.com/mohammadpnp/sheet-import/internal/infrastructure/workbook"
	httpecho "github.com/mohammadpnp/sheet-import/internal/interfaces/http/echo"
	"gorm.io/gorm"
)

func NewHTTPServer(cfg config.Config, db *gorm.DB, pool *pgxpool.Pool, notifier domain.RecomputeNotifier) *echo.Echo {
	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.Logger())
	server.Use(middleware.BodyLimit(cfg.UploadBodyLimit))

	templateRepo := repository.NewTemplateRepository(db)
	batchRepo := repository.NewImportBatchRepository(db)
	recordRepo := repository.NewRecordRepository(db, pool)
	reader := &workbook.Reader{MaxRows: cfg.MaxSheetRows}

	importSheets := app.NewImportSpreadsheets(templateRepo, reader, recordRepo, batchRepo, notifier, app.ImportSpreadsheetsConfig{
		Policy: cfg.RowPolicy,
	})
	getBatch := app.NewGetImportBatch(batchRepo)
	importHandler := httpecho.NewImportHandler(importSheets, getBatch, file.NewUploadStaging(cfg.UploadDir))

	manageTemplates := app.NewManageTemplates(templateRepo, recordRepo)
	templateHandler := httpecho.NewTemplateHandler(manageTemplates)

	httpecho.RegisterRoutes(server, importHandler, templateHandler)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	return server
}
