package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unifiedui/arango-client/internal/api/dto"
	"github.com/unifiedui/arango-client/internal/api/middleware"
	"github.com/unifiedui/arango-client/pkg/arango"
)

// CollectionsHandler handles collection endpoints.
type CollectionsHandler struct {
	db *arango.Database
}

// NewCollectionsHandler creates a new CollectionsHandler.
func NewCollectionsHandler(db *arango.Database) *CollectionsHandler {
	return &CollectionsHandler{db: db}
}

// ListCollections handles GET /collections
// @Summary List collections
// @Tags Collections
// @Produce json
// @Success 200 {object} dto.ListCollectionsResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 502 {object} dto.ErrorResponse "ArangoDB error"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections [get]
func (h *CollectionsHandler) ListCollections(c *gin.Context) {
	collections, err := h.db.Collections(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp := &dto.ListCollectionsResponse{
		Collections: make([]*dto.CollectionResponse, 0, len(collections)),
		Total:       len(collections),
	}
	for _, coll := range collections {
		resp.Collections = append(resp.Collections, dto.NewCollectionResponse(coll))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateCollection handles POST /collections
// @Summary Get or create a collection
// @Description Returns the named collection, creating it when it does not exist
// @Tags Collections
// @Accept json
// @Produce json
// @Param request body dto.CreateCollectionRequest true "Collection name"
// @Success 200 {object} dto.CollectionResponse
// @Failure 400 {object} dto.ErrorResponse "Bad request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 502 {object} dto.ErrorResponse "ArangoDB error"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections [post]
func (h *CollectionsHandler) CreateCollection(c *gin.Context) {
	var req dto.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, arango.NewValidationError("invalid request body", err.Error()))
		return
	}

	coll, err := h.db.GetOrCreate(c.Request.Context(), req.Name)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCollectionResponse(coll))
}

// GetCollection handles GET /collections/{name}
// @Summary Get a collection
// @Tags Collections
// @Produce json
// @Param name path string true "Collection name or id"
// @Success 200 {object} dto.CollectionResponse
// @Failure 404 {object} dto.ErrorResponse "Collection not found"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections/{name} [get]
func (h *CollectionsHandler) GetCollection(c *gin.Context) {
	coll, err := h.db.Collection(c.Request.Context(), c.Param("name"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCollectionResponse(coll))
}

// DeleteCollection handles DELETE /collections/{name}
// @Summary Drop a collection
// @Tags Collections
// @Param name path string true "Collection name or id"
// @Success 204 "Collection dropped"
// @Failure 404 {object} dto.ErrorResponse "Collection not found"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections/{name} [delete]
func (h *CollectionsHandler) DeleteCollection(c *gin.Context) {
	if err := h.db.CollectionReference(c.Param("name")).Drop(c.Request.Context()); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CountDocuments handles GET /collections/{name}/count
// @Summary Count documents
// @Tags Collections
// @Produce json
// @Param name path string true "Collection name or id"
// @Success 200 {object} dto.CountResponse
// @Failure 404 {object} dto.ErrorResponse "Collection not found"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections/{name}/count [get]
func (h *CollectionsHandler) CountDocuments(c *gin.Context) {
	name := c.Param("name")
	count, err := h.db.CollectionReference(name).Count(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, &dto.CountResponse{Name: name, Count: count})
}

// TruncateCollection handles PUT /collections/{name}/truncate
// @Summary Remove every document
// @Tags Collections
// @Param name path string true "Collection name or id"
// @Success 204 "Collection truncated"
// @Failure 404 {object} dto.ErrorResponse "Collection not found"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections/{name}/truncate [put]
func (h *CollectionsHandler) TruncateCollection(c *gin.Context) {
	if err := h.db.CollectionReference(c.Param("name")).Truncate(c.Request.Context()); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
