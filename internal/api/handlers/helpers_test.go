package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/unifiedui/arango-client/internal/api/handlers"
	"github.com/unifiedui/arango-client/internal/api/middleware"
	"github.com/unifiedui/arango-client/internal/api/routes"
	"github.com/unifiedui/arango-client/internal/core/cache"
	"github.com/unifiedui/arango-client/internal/core/docdb"
	"github.com/unifiedui/arango-client/internal/services/export"
	"github.com/unifiedui/arango-client/internal/testutil"
	"github.com/unifiedui/arango-client/internal/testutil/mocks"
)

const base = routes.BasePath

type gateway struct {
	fake      *testutil.FakeArango
	router    *gin.Engine
	validator *mocks.MockValidationService
	exporter  *mocks.MockExportService
	cache     *mocks.MockCache
	docdb     *mocks.MockDocDBClient
}

type options struct {
	apiKey     string
	noExporter bool
	noCache    bool
}

func setupGateway(t *testing.T, opts options) *gateway {
	t.Helper()

	g := &gateway{
		fake:      testutil.NewFakeArango(t),
		validator: &mocks.MockValidationService{},
		exporter:  &mocks.MockExportService{},
		cache:     &mocks.MockCache{},
		docdb:     &mocks.MockDocDBClient{},
	}
	db := g.fake.Database(t)

	var (
		exporter export.Service = g.exporter
		queue    *export.Queue
	)
	if opts.noExporter {
		exporter = nil
	} else {
		queue = export.NewQueue(g.exporter, 1, nil)
		queue.Start(1)
		t.Cleanup(queue.Stop)
	}
	var cacheClient cache.Cache = g.cache
	if opts.noCache {
		cacheClient = nil
	}
	var docDBClient docdb.Client = g.docdb

	g.router = testutil.SetupTestRouter()
	routes.SetupWithMiddleware(g.router, &routes.Config{
		HealthHandler:      handlers.NewHealthHandler(db, cacheClient, docDBClient),
		CollectionsHandler: handlers.NewCollectionsHandler(db),
		DocumentsHandler:   handlers.NewDocumentsHandler(db),
		QueriesHandler:     handlers.NewQueriesHandler(db, g.validator, 1000),
		ExportHandler:      handlers.NewExportHandler(exporter, queue),
		AuthMiddleware:     middleware.NewAuthMiddleware(opts.apiKey),
	}, middleware.NewLoggingMiddlewareWithLogger(zerolog.Nop()), middleware.NewErrorMiddleware(), nil)

	return g
}

// users registers the properties lookup a collection reference resolves with.
func (g *gateway) users() {
	g.fake.Reply("GET /_api/collection/users/properties", http.StatusOK, map[string]interface{}{
		"id": "10", "name": "users", "status": 3, "type": 2, "waitForSync": false,
	})
}

func user(key, color string) map[string]interface{} {
	return map[string]interface{}{"_id": "users/" + key, "_key": key, "_rev": "r" + key, "color": color}
}
