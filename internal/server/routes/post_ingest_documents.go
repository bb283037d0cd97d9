package routes

import (
	"net/http"

	"github.com/astrea-space/astrea/backend/internal/queue"
	"github.com/astrea-space/astrea/backend/internal/server/middleware"
	"github.com/astrea-space/astrea/backend/internal/util"
	"github.com/astrea-space/astrea/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IngestDocumentsHandler enqueues documents for background ingestion.
// Each entry names either a local path under DOCUMENTS_DIR or an object
// key in the configured bucket.
func IngestDocumentsHandler(c echo.Context) error {
	type ingestDocument struct {
		Path    string `json:"path,omitempty"`
		S3Key   string `json:"s3Key,omitempty"`
		DocID   string `json:"docId,omitempty"`
		Title   string `json:"title,omitempty"`
		URL     string `json:"url,omitempty"`
		BuildKG *bool  `json:"buildKg,omitempty"`
	}

	type ingestRequest struct {
		Documents []ingestDocument `json:"documents" validate:"required"`
	}

	type ingestResponse struct {
		Message  string `json:"message"`
		Enqueued int    `json:"enqueued"`
	}

	data := new(ingestRequest)
	if err := c.Bind(data); err != nil || len(data.Documents) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Documents array is required"})
	}

	for _, doc := range data.Documents {
		if doc.Path == "" && doc.S3Key == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Each document needs a path or s3Key"})
		}
	}

	ch := c.(*middleware.AppContext).App.Queue

	enqueued := 0
	for _, doc := range data.Documents {
		msg := queue.IngestJobMsg{
			Message: "Document ingestion requested",
			Path:    doc.Path,
			S3Key:   doc.S3Key,
			DocID:   doc.DocID,
			Title:   doc.Title,
			URL:     doc.URL,
			BuildKG: doc.BuildKG,
		}
		err := queue.PublishFIFO(ch, queue.IngestQueue, []byte(util.ConvertStructToJson(msg)))
		if err != nil {
			logger.Error("[Routes][Ingest] Failed to publish to ingest_queue", "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to enqueue documents"})
		}
		enqueued++
	}

	return c.JSON(http.StatusOK, ingestResponse{
		Message:  "Documents enqueued for ingestion",
		Enqueued: enqueued,
	})
}
