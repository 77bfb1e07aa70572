package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/unifiedui/arango-client/internal/api/dto"
	"github.com/unifiedui/arango-client/internal/testutil"
)

func TestHealth_AllHealthy(t *testing.T) {
	g := setupGateway(t, options{})
	g.fake.Reply("GET /_api/version", http.StatusOK, map[string]string{"server": "arango", "version": "1.4.0"})
	g.cache.On("Ping", mock.Anything).Return(nil)
	g.docdb.On("Ping", mock.Anything).Return(nil)

	w := testutil.PerformRequest(g.router, http.MethodGet, base+"/health", nil, nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	var resp dto.HealthResponse
	testutil.ParseJSONResponse(t, w, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.4.0", resp.Version)
	assert.Equal(t, map[string]string{"arango": "healthy", "cache": "healthy", "docdb": "healthy"}, resp.Components)
}

func TestHealth_Degraded(t *testing.T) {
	g := setupGateway(t, options{noCache: true})
	g.fake.Fail("GET /_api/version", http.StatusServiceUnavailable, 503, "starting")
	g.docdb.On("Ping", mock.Anything).Return(errors.New("no reachable servers"))

	w := testutil.PerformRequest(g.router, http.MethodGet, base+"/health", nil, nil)

	testutil.AssertStatusCode(t, http.StatusServiceUnavailable, w)
	var resp dto.HealthResponse
	testutil.ParseJSONResponse(t, w, &resp)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Empty(t, resp.Version)
	assert.Equal(t, map[string]string{"arango": "unhealthy", "cache": "disabled", "docdb": "unhealthy"}, resp.Components)
}

func TestReady(t *testing.T) {
	g := setupGateway(t, options{})

	w := testutil.PerformRequest(g.router, http.MethodGet, base+"/ready", nil, nil)
	testutil.AssertStatusCode(t, http.StatusServiceUnavailable, w)

	g.fake.Reply("GET /_api/version", http.StatusOK, map[string]string{"server": "arango", "version": "1.4.0"})
	w = testutil.PerformRequest(g.router, http.MethodGet, base+"/ready", nil, nil)
	testutil.AssertStatusCode(t, http.StatusOK, w)
}

func TestLive(t *testing.T) {
	g := setupGateway(t, options{apiKey: "secret"})

	w := testutil.PerformRequest(g.router, http.MethodGet, base+"/live", nil, nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	assert.Empty(t, g.fake.Requests())
}
