package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openregulatory/regkb"
	"github.com/openregulatory/regkb/pkg/server/dto"
)

// IngestHandler handles document processing requests
type IngestHandler struct {
	kb regkb.Service
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(kb regkb.Service) *IngestHandler {
	return &IngestHandler{kb: kb}
}

// ProcessDocuments handles POST /api/v1/process-documents. The optional
// force query parameter rebuilds the index even when persisted artifacts
// exist.
func (h *IngestHandler) ProcessDocuments(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	stats, err := h.kb.ProcessDocuments(c.Request.Context(), force)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "processing_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ProcessResponse{
		Status:          "complete",
		Processed:       stats.Processed,
		Skipped:         stats.Skipped,
		Documents:       stats.Documents,
		FailedDocuments: stats.FailedDocuments,
	})
}
