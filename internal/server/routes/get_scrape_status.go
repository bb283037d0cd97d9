package routes

import (
	"net/http"

	"github.com/astrea-space/astrea/backend/internal/util"

	"github.com/labstack/echo/v4"
)

// ScrapeStatusHandler reports whether the scraping pipeline has the
// credentials it needs and, when ready, lists its capabilities and
// endpoints. Returns 503 with the missing variable names when the
// service cannot scrape.
func ScrapeStatusHandler(c echo.Context) error {
	type statusResponse struct {
		Status      string            `json:"status"`
		Message     string            `json:"message"`
		MissingVars []string          `json:"missingVars,omitempty"`
		Features    []string          `json:"features,omitempty"`
		Endpoints   map[string]string `json:"endpoints,omitempty"`
	}

	missing := make([]string, 0)
	for _, name := range []string{"AI_EMBED_KEY", "DATABASE_URL"} {
		if util.GetEnv(name) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return c.JSON(http.StatusServiceUnavailable, statusResponse{
			Status:      "error",
			Message:     "Missing required environment variables",
			MissingVars: missing,
		})
	}

	return c.JSON(http.StatusOK, statusResponse{
		Status:  "ready",
		Message: "Web scraper is ready to process URLs",
		Features: []string{
			"Single URL scraping",
			"Multiple URLs scraping",
			"Content chunking",
			"Embedding generation",
			"pgvector storage",
		},
		Endpoints: map[string]string{
			"single":   "POST /scrape/url",
			"multiple": "POST /scrape/urls",
			"status":   "GET /scrape/status",
		},
	})
}
