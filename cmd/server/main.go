// Package main is the entry point for the ArangoDB gateway.
// @title ArangoDB Gateway API
// @version 1.0
// @description HTTP gateway over the ArangoDB document, collection, cursor and query APIs

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-Gateway-Key
// @description Gateway API key; required when GATEWAY_API_KEY is set
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/unifiedui/arango-client/docs"
	"github.com/unifiedui/arango-client/internal/api/handlers"
	"github.com/unifiedui/arango-client/internal/api/middleware"
	"github.com/unifiedui/arango-client/internal/api/routes"
	"github.com/unifiedui/arango-client/internal/config"
	"github.com/unifiedui/arango-client/internal/core/cache"
	"github.com/unifiedui/arango-client/internal/core/docdb"
	"github.com/unifiedui/arango-client/internal/core/vault"
	rediscache "github.com/unifiedui/arango-client/internal/infrastructure/cache/redis"
	"github.com/unifiedui/arango-client/internal/infrastructure/docdb/mongodb"
	dotenvvault "github.com/unifiedui/arango-client/internal/infrastructure/vault/dotenv"
	"github.com/unifiedui/arango-client/internal/logging"
	"github.com/unifiedui/arango-client/internal/services/export"
	"github.com/unifiedui/arango-client/internal/services/validation"
	"github.com/unifiedui/arango-client/pkg/arango"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Log)

	ctx := context.Background()

	vaultClient, err := createVault(cfg.Vault)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vault")
	}
	defer vaultClient.Close()

	db, err := createDatabase(ctx, cfg.Arango, vaultClient, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize arango client")
	}

	// The cache is optional: without it every validation goes to the server.
	cacheClient, err := createCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		cacheClient = nil
	}
	if cacheClient != nil {
		defer cacheClient.Close()
	}

	docDBClient, err := createDocDB(ctx, cfg.DocDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document db client")
	}
	if docDBClient != nil {
		defer docDBClient.Close(ctx)
	}

	validator, err := validation.NewService(&validation.Config{
		Validator: db.Query(),
		Cache:     cacheClient,
		TTL:       cfg.Cache.TTL,
		Logger:    &logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize validation service")
	}

	var (
		exporter export.Service
		queue    *export.Queue
	)
	if docDBClient != nil {
		exporter, err = export.NewService(&export.Config{
			Database:  db,
			Sink:      docDBClient,
			ChunkSize: cfg.Gateway.ExportChunkSize,
			BatchSize: cfg.Gateway.QueryBatchSize,
			Logger:    &logger,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize export service")
		}

		queue = export.NewQueue(exporter, cfg.Gateway.ExportQueueSize, &logger)
		queue.Start(cfg.Gateway.ExportWorkers)
		defer queue.Stop()
	}

	gin.SetMode(cfg.Server.GinMode)

	router := setupRouter(cfg, db, cacheClient, docDBClient, validator, exporter, queue, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address()).Str("arango", cfg.Arango.URL).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server exited")
}

// createVault creates a vault based on the configuration.
func createVault(cfg config.VaultConfig) (vault.Vault, error) {
	switch vault.Type(cfg.Type) {
	case vault.TypeDotEnv:
		return dotenvvault.NewVault(cfg.EnvFile)
	default:
		return nil, fmt.Errorf("unsupported vault type: %s", cfg.Type)
	}
}

// createDatabase resolves the password reference and builds the client.
func createDatabase(ctx context.Context, cfg config.ArangoConfig, v vault.Vault, logger *zerolog.Logger) (*arango.Database, error) {
	password, err := vault.Resolve(ctx, v, cfg.Password)
	if err != nil {
		return nil, err
	}

	db, err := arango.NewDatabase(&arango.ConnectionConfig{
		URL:        cfg.URL,
		Username:   cfg.Username,
		Password:   password,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createCache creates a cache based on the configuration. It returns nil
// when caching is disabled.
func createCache(cfg config.CacheConfig) (cache.Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cache.Type(cfg.Type) {
	case cache.TypeRedis:
		return rediscache.NewCache(rediscache.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			Password:   cfg.Password,
			DB:         cfg.DB,
			DefaultTTL: cfg.TTL,
			Prefix:     "arango-gateway:",
		})
	case cache.TypeNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.Type)
	}
}

// createDocDB creates the export sink based on the configuration. It returns
// nil when exports are disabled.
func createDocDB(ctx context.Context, cfg config.DocDBConfig) (docdb.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch docdb.Type(cfg.Type) {
	case docdb.TypeMongoDB, docdb.TypeCosmosDB:
		// CosmosDB speaks the MongoDB protocol.
		return mongodb.NewClient(ctx, &mongodb.ClientConfig{
			URI:          cfg.URI,
			DatabaseName: cfg.Database,
		})
	default:
		return nil, fmt.Errorf("unsupported docdb type: %s", cfg.Type)
	}
}

// setupRouter creates and configures the Gin router.
func setupRouter(
	cfg *config.Config,
	db *arango.Database,
	cacheClient cache.Cache,
	docDBClient docdb.Client,
	validator validation.Service,
	exporter export.Service,
	queue *export.Queue,
	logger zerolog.Logger,
) *gin.Engine {
	router := gin.New()

	loggingMw := middleware.NewLoggingMiddlewareWithLogger(logger)
	errorMw := middleware.NewErrorMiddleware()
	authMw := middleware.NewAuthMiddleware(cfg.Gateway.APIKey)

	var cors gin.HandlerFunc
	if len(cfg.Gateway.CORSOrigins) > 0 {
		cors = middleware.NewCORSMiddleware(middleware.DefaultCORSConfig(cfg.Gateway.CORSOrigins))
	}

	routesCfg := &routes.Config{
		HealthHandler:      handlers.NewHealthHandler(db, cacheClient, docDBClient),
		CollectionsHandler: handlers.NewCollectionsHandler(db),
		DocumentsHandler:   handlers.NewDocumentsHandler(db),
		QueriesHandler:     handlers.NewQueriesHandler(db, validator, cfg.Gateway.QueryBatchSize),
		ExportHandler:      handlers.NewExportHandler(exporter, queue),
		AuthMiddleware:     authMw,
		EnableDocs:         true,
	}

	routes.SetupWithMiddleware(router, routesCfg, loggingMw, errorMw, cors)

	return router
}
