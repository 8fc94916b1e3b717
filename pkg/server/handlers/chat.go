package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openregulatory/regkb"
	"github.com/openregulatory/regkb/pkg/server/dto"
	"github.com/openregulatory/regkb/pkg/types"
)

// ChatHandler handles conversational requests
type ChatHandler struct {
	kb regkb.Service
}

// NewChatHandler creates a new chat handler
func NewChatHandler(kb regkb.Service) *ChatHandler {
	return &ChatHandler{kb: kb}
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	for _, msg := range req.History {
		if err := msg.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
			return
		}
	}

	history := make([]types.Message, len(req.History))
	for i, msg := range req.History {
		history[i] = types.Message{Role: msg.Role, Content: msg.Content}
	}

	result, err := h.kb.Chat(c.Request.Context(), req.Message, history)
	if err != nil {
		if errors.Is(err, regkb.ErrNotReady) {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "not_ready", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "chat_failed", Message: err.Error()})
		return
	}

	citations := make([]dto.Citation, len(result.Citations))
	for i, citation := range result.Citations {
		citations[i] = dto.CitationFromType(citation)
	}
	c.JSON(http.StatusOK, dto.ChatResponse{
		Response:  result.Response,
		Citations: citations,
	})
}
