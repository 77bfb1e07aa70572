package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unifiedui/arango-client/internal/api/dto"
	"github.com/unifiedui/arango-client/internal/api/middleware"
	"github.com/unifiedui/arango-client/internal/services/export"
	"github.com/unifiedui/arango-client/pkg/arango"
)

// ExportHandler handles the export endpoints.
type ExportHandler struct {
	exporter export.Service
	queue    *export.Queue
}

// NewExportHandler creates a new ExportHandler. exporter and queue are nil
// when no document database is configured.
func NewExportHandler(exporter export.Service, queue *export.Queue) *ExportHandler {
	return &ExportHandler{exporter: exporter, queue: queue}
}

func exportDisabled(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.ErrorResponse{
		Code:    "EXPORT_DISABLED",
		Message: "no document database configured",
	})
}

// ExportCollection handles POST /collections/{name}/export
// @Summary Export a collection
// @Description Copies the collection, or the documents matching an example, to the document database.
// @Description With async set the export is queued and a job is returned.
// @Tags Export
// @Accept json
// @Produce json
// @Param name path string true "Collection name or id"
// @Param request body dto.ExportRequest false "Export target"
// @Success 200 {object} dto.ExportResponse
// @Success 202 {object} dto.ExportJobResponse
// @Failure 404 {object} dto.ErrorResponse "Collection not found"
// @Failure 503 {object} dto.ErrorResponse "Export disabled"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections/{name}/export [post]
func (h *ExportHandler) ExportCollection(c *gin.Context) {
	if h.exporter == nil {
		exportDisabled(c)
		return
	}

	var req dto.ExportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleError(c, arango.NewValidationError("invalid request body", err.Error()))
			return
		}
	}

	exportReq := &export.Request{
		Collection: c.Param("name"),
		Target:     req.Target,
		Example:    req.Example,
		Clear:      req.Clear,
	}

	if req.Async {
		h.enqueue(c, exportReq)
		return
	}

	result, err := h.exporter.Export(c.Request.Context(), exportReq)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	logger := middleware.GetRequestLogger(c)
	logger.Info().
		Str("target", result.Target).
		Int64("exported", result.Exported).
		Dur("duration", result.Duration).
		Msg("collection exported")

	c.JSON(http.StatusOK, dto.NewExportResponse(result))
}

func (h *ExportHandler) enqueue(c *gin.Context, req *export.Request) {
	if h.queue == nil {
		exportDisabled(c)
		return
	}

	job, err := h.queue.Enqueue(req)
	switch {
	case errors.Is(err, export.ErrQueueFull), errors.Is(err, export.ErrQueueStopped):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Code:    "EXPORT_QUEUE_UNAVAILABLE",
			Message: err.Error(),
		})
		return
	case err != nil:
		middleware.HandleError(c, err)
		return
	}

	c.Header("Location", "exports/"+job.ID)
	c.JSON(http.StatusAccepted, dto.NewExportJobResponse(job))
}

// GetExportJob handles GET /exports/{id}
// @Summary Get a queued export
// @Tags Export
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} dto.ExportJobResponse
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Failure 503 {object} dto.ErrorResponse "Export disabled"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/exports/{id} [get]
func (h *ExportHandler) GetExportJob(c *gin.Context) {
	if h.queue == nil {
		exportDisabled(c)
		return
	}

	job, ok := h.queue.Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, dto.ErrorResponse{
			Code:    "JOB_NOT_FOUND",
			Message: "export job not found",
			Details: c.Param("id"),
		})
		return
	}
	c.JSON(http.StatusOK, dto.NewExportJobResponse(job))
}
