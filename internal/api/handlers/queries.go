package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unifiedui/arango-client/internal/api/dto"
	"github.com/unifiedui/arango-client/internal/api/middleware"
	"github.com/unifiedui/arango-client/internal/api/sse"
	"github.com/unifiedui/arango-client/internal/services/validation"
	"github.com/unifiedui/arango-client/pkg/arango"
)

// Simple query shapes accepted by POST /collections/{name}/simple/{shape}.
const (
	ShapeAll          = "all"
	ShapeByExample    = "by-example"
	ShapeFirstExample = "first-example"
	ShapeNear         = "near"
	ShapeWithin       = "within"
	ShapeRange        = "range"
)

// QueriesHandler handles simple query and AQL endpoints.
type QueriesHandler struct {
	db        *arango.Database
	validator validation.Service
	batchSize int
}

// NewQueriesHandler creates a new QueriesHandler. batchSize is applied to AQL
// queries that do not set batch_size themselves; zero leaves it to the server.
func NewQueriesHandler(db *arango.Database, validator validation.Service, batchSize int) *QueriesHandler {
	return &QueriesHandler{
		db:        db,
		validator: validator,
		batchSize: batchSize,
	}
}

// SimpleQuery handles POST /collections/{name}/simple/{shape}
// @Summary Run a simple query
// @Description Runs all, by-example, first-example, near, within or range against the collection
// @Tags Queries
// @Accept json
// @Produce json
// @Param name path string true "Collection name or id"
// @Param shape path string true "Query shape" Enums(all, by-example, first-example, near, within, range)
// @Param request body dto.SimpleQueryRequest false "Example and options"
// @Success 200 {object} dto.QueryResultResponse
// @Failure 400 {object} dto.ErrorResponse "Bad request"
// @Failure 404 {object} dto.ErrorResponse "Collection or document not found"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/collections/{name}/simple/{shape} [post]
func (h *QueriesHandler) SimpleQuery(c *gin.Context) {
	ctx := c.Request.Context()
	shape := c.Param("shape")

	var req dto.SimpleQueryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleError(c, arango.NewValidationError("invalid request body", err.Error()))
			return
		}
	}

	query := h.db.CollectionReference(c.Param("name")).Query()
	opts := arango.Options(req.Options)

	var (
		cursor *arango.Cursor
		err    error
	)
	switch shape {
	case ShapeAll:
		cursor, err = query.All(ctx, opts)
	case ShapeByExample:
		if req.Example == nil {
			middleware.HandleError(c, arango.NewValidationError("example is required", shape))
			return
		}
		cursor, err = query.ByExample(ctx, req.Example, opts)
	case ShapeFirstExample:
		if req.Example == nil {
			middleware.HandleError(c, arango.NewValidationError("example is required", shape))
			return
		}
		doc, ferr := query.FirstExample(ctx, req.Example)
		if ferr != nil {
			middleware.HandleError(c, ferr)
			return
		}
		c.JSON(http.StatusOK, doc.Map())
		return
	case ShapeNear:
		cursor, err = query.Near(ctx, opts)
	case ShapeWithin:
		cursor, err = query.Within(ctx, opts)
	case ShapeRange:
		cursor, err = query.InRange(ctx, opts)
	default:
		middleware.HandleError(c, arango.NewValidationError("unknown query shape", shape))
		return
	}
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	h.respondDrained(c, cursor)
}

// ExecuteQuery handles POST /query
// @Summary Execute an AQL query
// @Description Runs the query and returns every result. Options: count, batch_size, bind_vars
// @Tags Queries
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "Query and options"
// @Success 200 {object} dto.QueryResultResponse
// @Failure 400 {object} dto.ErrorResponse "Bad request or syntax error"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/query [post]
func (h *QueriesHandler) ExecuteQuery(c *gin.Context) {
	cursor, ok := h.execute(c)
	if !ok {
		return
	}
	h.respondDrained(c, cursor)
}

// StreamQuery handles POST /query/stream
// @Summary Stream an AQL query
// @Description Runs the query and streams one "document" event per result, then a "done" event with the count
// @Tags Queries
// @Accept json
// @Produce text/event-stream
// @Param request body dto.QueryRequest true "Query and options"
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} dto.ErrorResponse "Bad request or syntax error"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/query/stream [post]
func (h *QueriesHandler) StreamQuery(c *gin.Context) {
	cursor, ok := h.execute(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	defer closeCursor(ctx, cursor)

	writer, err := sse.NewWriter(c.Writer)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	logger := middleware.GetRequestLogger(c)
	var sent int64
	for cursor.Next(ctx) {
		sent++
		if err := writer.WriteDocument(sent, cursor.Raw()); err != nil {
			logger.Warn().Err(err).Int64("sent", sent).Msg("client went away during stream")
			return
		}
	}

	if err := cursor.Err(); err != nil {
		code, message := "INTERNAL_ERROR", err.Error()
		if arangoErr, ok := arango.GetError(err); ok {
			code, message = arangoErr.Code, arangoErr.Message
		}
		logger.Error().Err(err).Int64("sent", sent).Msg("query stream failed")
		_ = writer.WriteError(code, message, "")
		return
	}

	_ = writer.WriteDone(sent)
}

// ValidateQuery handles POST /query/validate
// @Summary Validate an AQL query
// @Description Asks the server to parse the query; answers are cached
// @Tags Queries
// @Accept json
// @Produce json
// @Param request body dto.ValidateQueryRequest true "Query"
// @Success 200 {object} dto.ValidateQueryResponse
// @Failure 400 {object} dto.ErrorResponse "Bad request"
// @Security ApiKeyAuth
// @Router /api/v1/arango-gateway/query/validate [post]
func (h *QueriesHandler) ValidateQuery(c *gin.Context) {
	var req dto.ValidateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, arango.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.validator.Validate(c.Request.Context(), req.Query)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, &dto.ValidateQueryResponse{Valid: result.Valid, Cached: result.Cached})
}

func (h *QueriesHandler) execute(c *gin.Context) (*arango.Cursor, bool) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, arango.NewValidationError("invalid request body", err.Error()))
		return nil, false
	}

	opts := arango.Options{}
	for k, v := range req.Options {
		opts[k] = v
	}
	if _, set := opts["batch_size"]; !set && h.batchSize > 0 {
		opts["batch_size"] = h.batchSize
	}

	cursor, err := h.db.Query().Execute(c.Request.Context(), req.Query, opts)
	if err != nil {
		middleware.HandleError(c, err)
		return nil, false
	}
	return cursor, true
}

func (h *QueriesHandler) respondDrained(c *gin.Context, cursor *arango.Cursor) {
	ctx := c.Request.Context()
	defer closeCursor(ctx, cursor)

	resp := &dto.QueryResultResponse{Result: make([]json.RawMessage, 0)}
	for cursor.Next(ctx) {
		resp.Result = append(resp.Result, cursor.Raw())
	}
	if err := cursor.Err(); err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp.Count = len(resp.Result)
	if count, ok := cursor.Count(); ok {
		resp.ServerCount = &count
	}
	c.JSON(http.StatusOK, resp)
}

// closeCursor releases the server cursor even when the request was canceled.
func closeCursor(ctx context.Context, cursor *arango.Cursor) {
	_ = cursor.Close(context.WithoutCancel(ctx))
}
