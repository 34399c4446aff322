package handler

import (
	"net/http"

	"github.com/baotran/ragchat-be/middleware"
	"github.com/baotran/ragchat-be/service"
	"github.com/baotran/ragchat-be/types"

	"github.com/gin-gonic/gin"
)

type WebSocketHandler struct {
	ws *service.WebSocketService
}

func NewWebSocketHandler(ws *service.WebSocketService) *WebSocketHandler {
	return &WebSocketHandler{
		ws: ws,
	}
}

// Chat upgrades the connection and serves the chat loop scoped to the
// caller's department.
func (h *WebSocketHandler) Chat(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.DataResponse{
			Status:  "error",
			Message: "missing credentials",
		})
		return
	}
	h.ws.HandleChat(c.Writer, c.Request, claims.Department)
}
