// Package middleware provides HTTP middleware for the gateway.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unifiedui/arango-client/pkg/arango"
)

// ErrorMiddleware handles error recovery and formatting.
type ErrorMiddleware struct{}

// NewErrorMiddleware creates a new ErrorMiddleware.
func NewErrorMiddleware() *ErrorMiddleware {
	return &ErrorMiddleware{}
}

// Recovery returns a gin middleware that recovers from panics.
func (m *ErrorMiddleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger := GetRequestLogger(c)
				logger.Error().
					Interface("error", err).
					Str("path", c.Request.URL.Path).
					Str("method", c.Request.Method).
					Msg("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Code:    "INTERNAL_ERROR",
					Message: "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
	ErrorNum int    `json:"errorNum,omitempty"`
}

// StatusFor returns the gateway status for an ArangoDB error. Client errors
// keep their status; server failures become 502 since the gateway itself is fine.
func StatusFor(err *arango.Error) int {
	switch {
	case err.HTTPStatus >= http.StatusInternalServerError:
		return http.StatusBadGateway
	case err.HTTPStatus >= http.StatusBadRequest:
		return err.HTTPStatus
	default:
		return http.StatusInternalServerError
	}
}

// HandleError handles errors and sends appropriate HTTP responses.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if arangoErr, ok := arango.GetError(err); ok {
		status := StatusFor(arangoErr)
		if status >= http.StatusInternalServerError {
			logger := GetRequestLogger(c)
			logger.Error().Err(err).Int("upstream_status", arangoErr.HTTPStatus).Msg("arango request failed")
		}
		c.AbortWithStatusJSON(status, ErrorResponse{
			Code:     arangoErr.Code,
			Message:  arangoErr.Message,
			Details:  arangoErr.Details,
			ErrorNum: arangoErr.ErrorNum,
		})
		return
	}

	logger := GetRequestLogger(c)
	logger.Error().Err(err).Msg("unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
	})
}

// NotFound returns a 404 handler.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "resource not found",
			Details: c.Request.URL.Path,
		})
	}
}

// MethodNotAllowed returns a 405 handler.
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{
			Code:    "METHOD_NOT_ALLOWED",
			Message: "method not allowed",
			Details: c.Request.Method,
		})
	}
}
