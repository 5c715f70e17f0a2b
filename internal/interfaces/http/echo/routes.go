package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(server *e.Echo, importHandler *ImportHandler, templateHandler *TemplateHandler) {
	if importHandler != nil {
		server.POST("/api/v1/imports", importHandler.ImportSpreadsheets)
		server.GET("/api/v1/imports/:id", importHandler.GetImportBatch)
	}
	if templateHandler != nil {
		server.GET("/api/v1/import-templates", templateHandler.List)
		server.POST("/api/v1/import-templates", templateHandler.Create)
		server.GET("/api/v1/import-templates/:id", templateHandler.Get)
		server.PUT("/api/v1/import-templates/:id", templateHandler.Update)
		server.DELETE("/api/v1/import-templates/:id", templateHandler.Delete)
	}
}
