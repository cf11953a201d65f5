package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront/internal/service"
)

// ChatHandler renders the chat page. Messages themselves travel over the websocket.
type ChatHandler struct {
	chat service.ChatService
}

// NewChatHandler creates a chat handler.
func NewChatHandler(chat service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// View renders the chat with the most recent history.
func (h *ChatHandler) View(c echo.Context) error {
	msgs, err := h.chat.Recent(c.Request().Context())
	if err != nil {
		return err
	}
	p, _ := currentPrincipal(c)
	return c.Render(http.StatusOK, "chat", echo.Map{"Title": "Chat", "User": p, "Messages": msgs})
}
