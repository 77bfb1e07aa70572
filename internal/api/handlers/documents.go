package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unifiedui/arango-client/internal/api/middleware"
	"github.com/unifiedui/arango-client/pkg/arango"
)

// DocumentsHandler handles document endpoints.
type DocumentsHandler struct {
	db *arango.Database
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(db *arango.Database) *DocumentsHandler {
	return &DocumentsHandler{db: db}
}

func bindFields(c *gin.Context) (map[string]interface{}, bool) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		middleware.HandleError(c, arango.NewValidationError("invalid request body", err.Error()))
		return nil, false
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return fields, true
}

// CreateDocument handles POST /collections/{name}/documents
// @Summary Create a document
// @Tags Documents
// @Accept json
// @Produce json
// @Param name path string true "Collection name or id"
// @Param request body object true "Document fields"
// @Success 201 {object} map[string]interface{} "Stored document with _id, _key and _rev"
// @Failure 400 {object} dto.ErrorResponse "Bad request"
// @Failure 404 {object} dto.ErrorResponse "Collection not found"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections/{name}/documents [post]
func (h *DocumentsHandler) CreateDocument(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	doc, err := h.db.CollectionReference(c.Param("name")).CreateDocument(c.Request.Context(), fields)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc.Map())
}

// GetDocument handles GET /collections/{name}/documents/{key}
// @Summary Get a document
// @Tags Documents
// @Produce json
// @Param name path string true "Collection name or id"
// @Param key path string true "Document key"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} dto.ErrorResponse "Document or collection not found"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections/{name}/documents/{key} [get]
func (h *DocumentsHandler) GetDocument(c *gin.Context) {
	doc, err := h.db.CollectionReference(c.Param("name")).Document(c.Request.Context(), c.Param("key"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc.Map())
}

// ReplaceDocument handles PUT /collections/{name}/documents/{key}
// @Summary Replace a document
// @Tags Documents
// @Accept json
// @Produce json
// @Param name path string true "Collection name or id"
// @Param key path string true "Document key"
// @Param request body object true "New document fields"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} dto.ErrorResponse "Document or collection not found"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections/{name}/documents/{key} [put]
func (h *DocumentsHandler) ReplaceDocument(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	doc, err := h.db.CollectionReference(c.Param("name")).ReplaceDocument(c.Request.Context(), c.Param("key"), fields)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc.Map())
}

// DeleteDocument handles DELETE /collections/{name}/documents/{key}
// @Summary Delete a document
// @Tags Documents
// @Param name path string true "Collection name or id"
// @Param key path string true "Document key"
// @Success 204 "Document deleted"
// @Failure 404 {object} dto.ErrorResponse "Document or collection not found"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections/{name}/documents/{key} [delete]
func (h *DocumentsHandler) DeleteDocument(c *gin.Context) {
	if err := h.db.CollectionReference(c.Param("name")).DeleteDocument(c.Request.Context(), c.Param("key")); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
