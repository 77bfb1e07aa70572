// Package routes defines the HTTP routes for the ArangoDB gateway.
package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/unifiedui/arango-client/internal/api/handlers"
	"github.com/unifiedui/arango-client/internal/api/middleware"
)

// BasePath is the prefix of every gateway route.
const BasePath = "/api/v1/arango-gateway"

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler      *handlers.HealthHandler
	CollectionsHandler *handlers.CollectionsHandler
	DocumentsHandler   *handlers.DocumentsHandler
	QueriesHandler     *handlers.QueriesHandler
	ExportHandler      *handlers.ExportHandler
	AuthMiddleware     *middleware.AuthMiddleware
	// EnableDocs serves the swagger UI under /docs.
	EnableDocs bool
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	r.NoRoute(middleware.NotFound())
	r.NoMethod(middleware.MethodNotAllowed())

	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group(BasePath)
	{
		// Health check routes (no auth required)
		v1.GET("/health", cfg.HealthHandler.Health)
		v1.GET("/ready", cfg.HealthHandler.Ready)
		v1.GET("/live", cfg.HealthHandler.Live)

		protected := v1.Group("")
		protected.Use(cfg.AuthMiddleware.Authenticate())

		collections := protected.Group("/collections")
		{
			collections.GET("", cfg.CollectionsHandler.ListCollections)
			collections.POST("", cfg.CollectionsHandler.CreateCollection)
			collections.GET("/:name", cfg.CollectionsHandler.GetCollection)
			collections.DELETE("/:name", cfg.CollectionsHandler.DeleteCollection)
			collections.GET("/:name/count", cfg.CollectionsHandler.CountDocuments)
			collections.PUT("/:name/truncate", cfg.CollectionsHandler.TruncateCollection)

			collections.POST("/:name/documents", cfg.DocumentsHandler.CreateDocument)
			collections.GET("/:name/documents/:key", cfg.DocumentsHandler.GetDocument)
			collections.PUT("/:name/documents/:key", cfg.DocumentsHandler.ReplaceDocument)
			collections.DELETE("/:name/documents/:key", cfg.DocumentsHandler.DeleteDocument)

			collections.POST("/:name/simple/:shape", cfg.QueriesHandler.SimpleQuery)
			collections.POST("/:name/export", cfg.ExportHandler.ExportCollection)
		}

		protected.GET("/exports/:id", cfg.ExportHandler.GetExportJob)

		query := protected.Group("/query")
		{
			query.POST("", cfg.QueriesHandler.ExecuteQuery)
			query.POST("/stream", cfg.QueriesHandler.StreamQuery)
			query.POST("/validate", cfg.QueriesHandler.ValidateQuery)
		}
	}
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware, cors gin.HandlerFunc) {
	r.HandleMethodNotAllowed = true

	r.Use(loggingMw.RequestLogger())
	r.Use(loggingMw.Logger())
	r.Use(errorMw.Recovery())
	if cors != nil {
		r.Use(cors)
	}

	Setup(r, cfg)
}
