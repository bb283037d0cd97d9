package server

import (
	"github.com/astrea-space/astrea/backend/internal/server/middleware"
	"github.com/astrea-space/astrea/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	// Chat routes
	e.POST("/chat", routes.ChatHandler)
	e.POST("/chat/telegram", routes.ChatTelegramHandler)

	// Scrape routes
	e.POST("/scrape/url", routes.ScrapeURLHandler)
	e.POST("/scrape/urls", routes.ScrapeURLsHandler)
	e.GET("/scrape/status", routes.ScrapeStatusHandler)

	// Ingestion routes
	apiRoutes := e.Group("/api", middleware.AuthMiddleware)
	apiRoutes.POST("/ingest/documents", routes.IngestDocumentsHandler, middleware.RequirePermission("ingest.run"))
}
