package routes

import (
	"net/http"
	"strings"

	"github.com/astrea-space/astrea/backend/internal/server/middleware"
	"github.com/astrea-space/astrea/backend/internal/server/util"
	"github.com/astrea-space/astrea/backend/pkg/common"
	"github.com/astrea-space/astrea/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ChatHandler answers a question over the indexed publications and
// returns the structured answer plus the knowledge-graph payload for
// visualization.
func ChatHandler(c echo.Context) error {
	type chatRequest struct {
		Question  string `json:"question"`
		SessionID string `json:"sessionId"`
	}

	type chatResponse struct {
		Answer string            `json:"answer"`
		Graph  *common.GraphData `json:"graph"`
		Error  string            `json:"error,omitempty"`
	}

	data := new(chatRequest)
	if err := c.Bind(data); err != nil || data.Question == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Question is required"})
	}

	ctx := c.Request().Context()
	chatService := c.(*middleware.AppContext).App.Chat

	result, err := chatService.Chat(ctx, data.SessionID, data.Question)
	if err != nil {
		logger.Error("[Routes][Chat] Chat pipeline failed", "err", err)
		return c.JSON(http.StatusInternalServerError, chatResponse{
			Answer: "An error occurred while processing your request.",
			Graph:  &common.GraphData{Nodes: []common.GraphNode{}, Edges: []common.GraphEdge{}},
			Error:  err.Error(),
		})
	}

	// Model output that already carries its own section layout passes
	// through unmodified; only unsectioned grounded answers get the
	// template. Fallback answers are never reformatted.
	answer := result.Answer
	if result.Grounded && !strings.Contains(answer, "Key Findings:") {
		answer = util.SectionsFromGraph(result.Answer, result.Graph).Format()
	}

	graph := result.Graph
	if graph == nil {
		graph = &common.GraphData{Nodes: []common.GraphNode{}, Edges: []common.GraphEdge{}}
	}

	return c.JSON(http.StatusOK, chatResponse{
		Answer: answer,
		Graph:  graph,
	})
}
