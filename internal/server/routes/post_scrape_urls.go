package routes

import (
	"net/http"

	"github.com/astrea-space/astrea/backend/internal/queue"
	"github.com/astrea-space/astrea/backend/internal/server/middleware"
	"github.com/astrea-space/astrea/backend/internal/util"
	"github.com/astrea-space/astrea/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ScrapeURLsHandler scrapes a batch of URLs sequentially, or enqueues
// them for the background worker when async is set. Every URL must be
// well-formed before any of them is processed; individual fetch or
// indexing failures are reported per URL and never fail the batch.
func ScrapeURLsHandler(c echo.Context) error {
	type scrapeRequest struct {
		URLs  []string `json:"urls"`
		Async bool     `json:"async,omitempty"`
	}

	type scrapeResponse struct {
		Message   string         `json:"message"`
		Total     int            `json:"total"`
		Succeeded int            `json:"succeeded"`
		Data      []scrapeResult `json:"data"`
	}

	data := new(scrapeRequest)
	if err := c.Bind(data); err != nil || len(data.URLs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "URLs array is required"})
	}

	for _, rawURL := range data.URLs {
		if !validScrapeURL(rawURL) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid URL format"})
		}
	}

	if data.Async {
		ch := c.(*middleware.AppContext).App.Queue
		for _, rawURL := range data.URLs {
			msg := queue.ScrapeJobMsg{
				Message: "URL scrape requested",
				URL:     rawURL,
			}
			if err := queue.PublishFIFO(ch, queue.ScrapeQueue, []byte(util.ConvertStructToJson(msg))); err != nil {
				logger.Error("[Routes][Scrape] Failed to publish to scrape_queue", "err", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to enqueue URLs"})
			}
		}
		return c.JSON(http.StatusOK, map[string]any{
			"message":  "URLs enqueued for scraping",
			"enqueued": len(data.URLs),
		})
	}

	results := make([]scrapeResult, 0, len(data.URLs))
	succeeded := 0
	for _, rawURL := range data.URLs {
		result, err := scrapeOne(c, rawURL)
		if err != nil {
			logger.Warn("[Routes][Scrape] Failed to process URL in batch", "url", rawURL, "err", err)
			results = append(results, scrapeResult{
				Success: false,
				URL:     rawURL,
				Error:   err.Error(),
			})
			continue
		}
		results = append(results, *result)
		succeeded++
	}

	return c.JSON(http.StatusOK, scrapeResponse{
		Message:   "Batch scrape completed",
		Total:     len(data.URLs),
		Succeeded: succeeded,
		Data:      results,
	})
}
