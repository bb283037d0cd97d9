package routes

import (
	"net/http"

	"github.com/astrea-space/astrea/backend/internal/server/middleware"
	"github.com/astrea-space/astrea/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ChatTelegramHandler answers a question for the Telegram bot bridge.
// Telegram chats render plain text only, so the response carries the raw
// answer without the section formatting or the graph payload.
func ChatTelegramHandler(c echo.Context) error {
	type chatRequest struct {
		Question  string `json:"question"`
		SessionID string `json:"sessionId"`
	}

	type chatResponse struct {
		Answer string `json:"answer"`
		Error  string `json:"error,omitempty"`
	}

	data := new(chatRequest)
	if err := c.Bind(data); err != nil || data.Question == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Question is required"})
	}

	ctx := c.Request().Context()
	chatService := c.(*middleware.AppContext).App.Chat

	result, err := chatService.Chat(ctx, data.SessionID, data.Question)
	if err != nil {
		logger.Error("[Routes][ChatTelegram] Chat pipeline failed", "err", err)
		return c.JSON(http.StatusInternalServerError, chatResponse{
			Answer: "An error occurred while processing your request.",
			Error:  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, chatResponse{
		Answer: result.Answer,
	})
}
