package routes

import (
	"net/http"
	"net/url"

	"github.com/astrea-space/astrea/backend/internal/server/middleware"
	"github.com/astrea-space/astrea/backend/pkg/common"
	"github.com/astrea-space/astrea/backend/pkg/graph"
	"github.com/astrea-space/astrea/backend/pkg/loader"
	"github.com/astrea-space/astrea/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

type scrapeResult struct {
	Success       bool   `json:"success"`
	URL           string `json:"url"`
	ChunksCreated int    `json:"chunksCreated"`
	ContentLength int    `json:"contentLength"`
	Error         string `json:"error,omitempty"`
}

func validScrapeURL(raw string) bool {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func scrapeOne(c echo.Context, rawURL string) (*scrapeResult, error) {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	file := loader.NewGraphWebFile(loader.NewGraphFileParams{
		ID:       rawURL,
		FilePath: rawURL,
		Loader:   app.WebLoader,
	})

	result, err := app.Pipeline.ProcessFile(ctx, graph.ProcessFileParams{
		File: file,
		Source: common.SourceRef{
			DocID: rawURL,
			Title: rawURL,
			URL:   rawURL,
		},
		BuildGraph: false,
	})
	if err != nil {
		return nil, err
	}

	return &scrapeResult{
		Success:       true,
		URL:           rawURL,
		ChunksCreated: result.ChunksCreated,
		ContentLength: result.ContentLength,
	}, nil
}

// ScrapeURLHandler fetches a single web page, extracts its readable text
// and indexes it for retrieval. Scraped pages are not added to the
// knowledge graph.
func ScrapeURLHandler(c echo.Context) error {
	type scrapeRequest struct {
		URL string `json:"url"`
	}

	type scrapeResponse struct {
		Message string        `json:"message"`
		Data    *scrapeResult `json:"data,omitempty"`
	}

	data := new(scrapeRequest)
	if err := c.Bind(data); err != nil || data.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "URL is required"})
	}

	if !validScrapeURL(data.URL) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid URL format"})
	}

	result, err := scrapeOne(c, data.URL)
	if err != nil {
		logger.Error("[Routes][Scrape] Failed to process URL", "url", data.URL, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Failed to process URL",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, scrapeResponse{
		Message: "URL scraped and indexed successfully",
		Data:    result,
	})
}
