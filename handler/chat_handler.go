package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/baotran/ragchat-be/database"
	"github.com/baotran/ragchat-be/middleware"
	"github.com/baotran/ragchat-be/service"
	"github.com/baotran/ragchat-be/types"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	rag       *service.RAGService
	chatStore database.ChatStore
}

func NewChatHandler(rag *service.RAGService, chatStore database.ChatStore) *ChatHandler {
	return &ChatHandler{
		rag:       rag,
		chatStore: chatStore,
	}
}

// Chat answers a question scoped to the caller's department and records both
// sides of the exchange in the chat history.
func (h *ChatHandler) Chat(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.DataResponse{
			Status:  "error",
			Message: "missing credentials",
		})
		return
	}

	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}

	ctx := c.Request.Context()
	if req.ChatId == "" {
		chat := &database.Chat{
			Title:  truncateTitle(req.Message),
			UserID: claims.ID,
		}
		if err := h.chatStore.CreateChat(ctx, chat); err != nil {
			c.JSON(http.StatusInternalServerError, types.DataResponse{
				Status:  "error",
				Message: "failed to create chat",
			})
			return
		}
		req.ChatId = chat.ID
	}

	resp, err := h.rag.Ask(ctx, req.Message, claims.Department)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	resp.ChatId = req.ChatId

	if err := h.chatStore.CreateMessage(ctx, &database.ChatMessage{
		Role:    "user",
		Content: req.Message,
		ChatID:  req.ChatId,
	}); err != nil {
		log.Printf("failed to save user message for chat %s: %v", req.ChatId, err)
	}
	if err := h.chatStore.CreateMessage(ctx, &database.ChatMessage{
		Role:    "assistant",
		Content: resp.Answer,
		ChatID:  req.ChatId,
		Sources: resp.Sources,
	}); err != nil {
		log.Printf("failed to save assistant message for chat %s: %v", req.ChatId, err)
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   resp,
	})
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.DataResponse{
			Status:  "error",
			Message: "missing credentials",
		})
		return
	}

	chats, err := h.chatStore.ListChats(c.Request.Context(), claims.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "failed to list chats",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   chats,
	})
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.DataResponse{
			Status:  "error",
			Message: "missing credentials",
		})
		return
	}

	chatID := c.Param("id")
	ctx := c.Request.Context()
	chat, err := h.chatStore.GetChat(ctx, chatID)
	if err != nil || chat.UserID != claims.ID {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "chat not found",
		})
		return
	}

	messages, err := h.chatStore.GetMessages(ctx, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "failed to load messages",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   messages,
	})
}

func (h *ChatHandler) DeleteChat(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.DataResponse{
			Status:  "error",
			Message: "missing credentials",
		})
		return
	}

	chatID := c.Param("id")
	ctx := c.Request.Context()
	chat, err := h.chatStore.GetChat(ctx, chatID)
	if err != nil || chat.UserID != claims.ID {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "chat not found",
		})
		return
	}

	if err := h.chatStore.DeleteChat(ctx, chatID); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "failed to delete chat",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
	})
}

func truncateTitle(message string) string {
	const maxTitle = 80
	if len(message) <= maxTitle {
		return message
	}
	return message[:maxTitle]
}

// writeQueryError maps retrieval errors onto HTTP statuses. Configuration
// problems surface as 503 so clients can distinguish them from bad input.
func writeQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrUnknownDepartment):
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
	case errors.Is(err, types.ErrIndexNotLoaded), errors.Is(err, types.ErrModelMismatch):
		c.JSON(http.StatusServiceUnavailable, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
	default:
		log.Printf("query failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "failed to answer question",
		})
	}
}
