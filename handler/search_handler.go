package handler

import (
	"net/http"

	"github.com/baotran/ragchat-be/middleware"
	"github.com/baotran/ragchat-be/service"
	"github.com/baotran/ragchat-be/types"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	rag *service.RAGService
}

func NewSearchHandler(rag *service.RAGService) *SearchHandler {
	return &SearchHandler{
		rag: rag,
	}
}

// Search returns the permitted passages for a query without generating an
// answer. Useful for debugging what the caller's department can see.
func (h *SearchHandler) Search(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.DataResponse{
			Status:  "error",
			Message: "missing credentials",
		})
		return
	}

	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}

	passages, err := h.rag.Search(c.Request.Context(), req.Query, claims.Department, req.Limit)
	if err != nil {
		writeQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.SearchResponse{
			Passages: passages,
		},
	})
}
