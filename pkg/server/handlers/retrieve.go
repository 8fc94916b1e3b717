package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openregulatory/regkb"
	"github.com/openregulatory/regkb/pkg/server/dto"
)

// defaultSearchK is used when a search request omits k.
const defaultSearchK = 5

// RetrieveHandler handles rule retrieval requests
type RetrieveHandler struct {
	kb regkb.Service
}

// NewRetrieveHandler creates a new retrieve handler
func NewRetrieveHandler(kb regkb.Service) *RetrieveHandler {
	return &RetrieveHandler{kb: kb}
}

// Search handles POST /api/v1/search
func (h *RetrieveHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "query cannot be empty"})
		return
	}
	if req.K <= 0 {
		req.K = defaultSearchK
	}

	results, err := h.kb.Search(c.Request.Context(), req.Query, req.K)
	if err != nil {
		if errors.Is(err, regkb.ErrNotReady) {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "not_ready", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "search_failed", Message: err.Error()})
		return
	}

	out := make([]dto.SearchResult, len(results))
	for i, result := range results {
		out[i] = dto.SearchResultFromType(result)
	}
	c.JSON(http.StatusOK, dto.SearchResponse{Results: out})
}

// GetRule handles GET /api/v1/rules/:number
func (h *RetrieveHandler) GetRule(c *gin.Context) {
	number := c.Param("number")

	rule, err := h.kb.GetRule(c.Request.Context(), number)
	if err != nil {
		switch {
		case errors.Is(err, regkb.ErrNotReady):
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "not_ready", Message: err.Error()})
		case errors.Is(err, regkb.ErrRuleNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "rule_not_found", Message: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "lookup_failed", Message: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, dto.RuleFromType(rule))
}

// GetRulesByCategory handles GET /api/v1/categories/:category
func (h *RetrieveHandler) GetRulesByCategory(c *gin.Context) {
	name := c.Param("category")

	rules, err := h.kb.GetRulesByCategory(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, regkb.ErrNotReady) {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "not_ready", Message: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_category", Message: err.Error()})
		return
	}

	out := make([]dto.Rule, len(rules))
	for i, rule := range rules {
		out[i] = dto.RuleFromType(rule)
	}
	c.JSON(http.StatusOK, dto.RulesResponse{Category: name, Rules: out})
}

// GetStatistics handles GET /api/v1/statistics
func (h *RetrieveHandler) GetStatistics(c *gin.Context) {
	stats, err := h.kb.GetStatistics(c.Request.Context())
	if err != nil {
		if errors.Is(err, regkb.ErrNotReady) {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "not_ready", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "statistics_failed", Message: err.Error()})
		return
	}

	bySource := make(map[string]int, len(stats.RulesBySource))
	for source, count := range stats.RulesBySource {
		bySource[string(source)] = count
	}
	c.JSON(http.StatusOK, dto.StatisticsResponse{
		TotalRules:      stats.TotalRules,
		ProcessedRules:  stats.ProcessedRules,
		RulesBySource:   bySource,
		RulesByCategory: stats.RulesByCategory,
		SkippedRules:    stats.SkippedRules,
	})
}
