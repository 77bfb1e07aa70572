package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/arango-client/internal/api/dto"
	"github.com/unifiedui/arango-client/internal/services/export"
	"github.com/unifiedui/arango-client/internal/testutil"
	"github.com/unifiedui/arango-client/pkg/arango"
)

func TestExportCollection(t *testing.T) {
	g := setupGateway(t, options{})
	g.exporter.On("Export", mock.Anything, &export.Request{
		Collection: "users",
		Target:     "users_copy",
		Example:    map[string]interface{}{"color": "red"},
		Clear:      true,
	}).Return(&export.Result{Collection: "users", Target: "users_copy", Exported: 7, Cleared: 2, Duration: 1500 * time.Millisecond}, nil)

	w := testutil.PerformRequest(g.router, http.MethodPost, base+"/collections/users/export", dto.ExportRequest{
		Target:  "users_copy",
		Example: map[string]interface{}{"color": "red"},
		Clear:   true,
	}, nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
	var resp dto.ExportResponse
	testutil.ParseJSONResponse(t, w, &resp)
	assert.Equal(t, dto.ExportResponse{Collection: "users", Target: "users_copy", Exported: 7, Cleared: 2, DurationMs: 1500}, resp)
	g.exporter.AssertExpectations(t)
}

func TestExportCollection_NotFound(t *testing.T) {
	g := setupGateway(t, options{})
	g.exporter.On("Export", mock.Anything, mock.Anything).Return(nil, arango.NewCollectionNotFoundError("ghosts"))

	w := testutil.PerformRequest(g.router, http.MethodPost, base+"/collections/ghosts/export", nil, nil)

	testutil.AssertStatusCode(t, http.StatusNotFound, w)
}

func TestExportCollection_Disabled(t *testing.T) {
	g := setupGateway(t, options{noExporter: true})

	w := testutil.PerformRequest(g.router, http.MethodPost, base+"/collections/users/export", nil, nil)

	testutil.AssertStatusCode(t, http.StatusServiceUnavailable, w)
	var resp dto.ErrorResponse
	testutil.ParseJSONResponse(t, w, &resp)
	assert.Equal(t, "EXPORT_DISABLED", resp.Code)
}

func TestExportCollection_Async(t *testing.T) {
	g := setupGateway(t, options{})
	g.exporter.On("Export", mock.Anything, &export.Request{Collection: "users"}).
		Return(&export.Result{Collection: "users", Target: "users", Exported: 4}, nil)

	w := testutil.PerformRequest(g.router, http.MethodPost, base+"/collections/users/export", dto.ExportRequest{Async: true}, nil)

	testutil.AssertStatusCode(t, http.StatusAccepted, w)
	var job dto.ExportJobResponse
	testutil.ParseJSONResponse(t, w, &job)
	assert.Equal(t, "users", job.Collection)
	assert.Equal(t, "exports/"+job.ID, w.Header().Get("Location"))

	var polled dto.ExportJobResponse
	require.Eventually(t, func() bool {
		w := testutil.PerformRequest(g.router, http.MethodGet, base+"/exports/"+job.ID, nil, nil)
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &polled) != nil {
			return false
		}
		return polled.Status == string(export.JobSucceeded)
	}, 2*time.Second, 5*time.Millisecond)

	require.NotNil(t, polled.Result)
	assert.Equal(t, int64(4), polled.Result.Exported)
	assert.NotNil(t, polled.FinishedAt)
}

func TestGetExportJob_NotFound(t *testing.T) {
	g := setupGateway(t, options{})

	w := testutil.PerformRequest(g.router, http.MethodGet, base+"/exports/missing", nil, nil)

	testutil.AssertStatusCode(t, http.StatusNotFound, w)
	var resp dto.ErrorResponse
	testutil.ParseJSONResponse(t, w, &resp)
	assert.Equal(t, "JOB_NOT_FOUND", resp.Code)
}
