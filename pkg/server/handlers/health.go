package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openregulatory/regkb"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	kb regkb.Service
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(kb regkb.Service) *HealthHandler {
	return &HealthHandler{kb: kb}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "regkb",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready. The service is ready once the index
// has been built or loaded.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	state := h.kb.State()
	response := gin.H{
		"status":    "ready",
		"service":   "regkb",
		"state":     string(state),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if state != regkb.StateReady {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}
