// Package handlers provides HTTP handlers for the gateway.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unifiedui/arango-client/internal/api/dto"
	"github.com/unifiedui/arango-client/internal/core/cache"
	"github.com/unifiedui/arango-client/internal/core/docdb"
	"github.com/unifiedui/arango-client/pkg/arango"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db          *arango.Database
	cacheClient cache.Cache
	docDBClient docdb.Client
}

// NewHealthHandler creates a new HealthHandler. cacheClient and docDBClient
// may be nil when the component is disabled.
func NewHealthHandler(db *arango.Database, cacheClient cache.Cache, docDBClient docdb.Client) *HealthHandler {
	return &HealthHandler{
		db:          db,
		cacheClient: cacheClient,
		docDBClient: docDBClient,
	}
}

// Health handles the /health endpoint.
// @Summary Health check
// @Description Returns the overall health status, the ArangoDB version and component statuses
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service healthy"
// @Failure 503 {object} dto.HealthResponse "Service unhealthy"
// @Router /api/v1/arango-gateway/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	components := make(map[string]string)
	healthy := true

	resp := dto.HealthResponse{}
	if version, err := h.db.Version(ctx); err != nil {
		components["arango"] = statusUnhealthy
		healthy = false
	} else {
		components["arango"] = statusHealthy
		resp.Version = version.Version
	}

	switch {
	case h.cacheClient == nil:
		components["cache"] = statusDisabled
	case h.cacheClient.Ping(ctx) != nil:
		components["cache"] = statusUnhealthy
		healthy = false
	default:
		components["cache"] = statusHealthy
	}

	switch {
	case h.docDBClient == nil:
		components["docdb"] = statusDisabled
	case h.docDBClient.Ping(ctx) != nil:
		components["docdb"] = statusUnhealthy
		healthy = false
	default:
		components["docdb"] = statusHealthy
	}

	resp.Status = statusHealthy
	statusCode := http.StatusOK
	if !healthy {
		resp.Status = statusUnhealthy
		statusCode = http.StatusServiceUnavailable
	}
	resp.Components = components

	c.JSON(statusCode, resp)
}

// Ready handles the /ready endpoint. Only ArangoDB gates readiness; the cache
// is bypassed on failure and exports fail on their own.
// @Summary Readiness check
// @Description Returns 200 if ArangoDB answers
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service ready"
// @Failure 503 {object} map[string]string "Service not ready"
// @Router /api/v1/arango-gateway/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if _, err := h.db.Version(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "arango unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// Live handles the /live endpoint.
// @Summary Liveness check
// @Description Returns 200 if the service is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service alive"
// @Router /api/v1/arango-gateway/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
