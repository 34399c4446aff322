package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/baotran/ragchat-be/service"
	"github.com/baotran/ragchat-be/types"

	"github.com/gin-gonic/gin"
)

type IngestHandler struct {
	ingest    *service.IngestService
	corpusDir string
}

func NewIngestHandler(ingest *service.IngestService, corpusDir string) *IngestHandler {
	return &IngestHandler{
		ingest:    ingest,
		corpusDir: corpusDir,
	}
}

// Ingest rebuilds the index synchronously. Queries keep serving the previous
// index until the new one is committed.
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req types.IngestRequest
	// The body is optional; an absent corpus_dir falls back to the configured one.
	_ = c.ShouldBindJSON(&req)
	corpusDir := req.CorpusDir
	if corpusDir == "" {
		corpusDir = h.corpusDir
	}
	if corpusDir == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "no corpus directory configured",
		})
		return
	}

	report, err := h.ingest.Ingest(c.Request.Context(), corpusDir)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrIngestInProgress):
			c.JSON(http.StatusConflict, types.DataResponse{
				Status:  "error",
				Message: err.Error(),
			})
		case errors.Is(err, types.ErrEmptyCorpus):
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  "error",
				Message: err.Error(),
			})
		default:
			log.Printf("ingest failed: %v", err)
			c.JSON(http.StatusInternalServerError, types.DataResponse{
				Status:  "error",
				Message: "index build failed, previous index remains live",
			})
		}
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   report,
	})
}
