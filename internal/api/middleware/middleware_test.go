package middleware_test

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/unifiedui/arango-client/internal/api/middleware"
	"github.com/unifiedui/arango-client/internal/testutil"
	"github.com/unifiedui/arango-client/pkg/arango"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  *arango.Error
		want int
	}{
		{"document not found", arango.NewDocumentNotFoundError("users/1"), http.StatusNotFound},
		{"collection not found", arango.NewCollectionNotFoundError("users"), http.StatusNotFound},
		{"bad syntax", arango.NewBadSyntaxError("unexpected"), http.StatusBadRequest},
		{"conflict", arango.NewResponseError(http.StatusConflict, 1210, "unique constraint violated"), http.StatusConflict},
		{"server error", arango.NewResponseError(http.StatusServiceUnavailable, 0, ""), http.StatusBadGateway},
		{"no collection", arango.ErrNoCollectionProvided, http.StatusBadRequest},
		{"no status", &arango.Error{Code: "X"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, middleware.StatusFor(tt.err))
		})
	}
}

func TestHandleError_WrappedArangoError(t *testing.T) {
	router := testutil.SetupTestRouter()
	router.GET("/x", func(c *gin.Context) {
		middleware.HandleError(c, errors.Join(errors.New("lookup"), arango.NewDocumentNotFoundError("users/1")))
	})

	w := testutil.PerformRequest(router, http.MethodGet, "/x", nil, nil)

	testutil.AssertStatusCode(t, http.StatusNotFound, w)
	assert.JSONEq(t, `{"code":"DOCUMENT_NOT_FOUND","message":"document not found","details":"users/1","errorNum":1202}`, w.Body.String())
}

func TestRecovery(t *testing.T) {
	router := testutil.SetupTestRouter()
	router.Use(middleware.NewErrorMiddleware().Recovery())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := testutil.PerformRequest(router, http.MethodGet, "/panic", nil, nil)

	testutil.AssertStatusCode(t, http.StatusInternalServerError, w)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestAuthenticate_DisabledWithoutKey(t *testing.T) {
	router := testutil.SetupTestRouter()
	router.Use(middleware.NewAuthMiddleware("").Authenticate())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := testutil.PerformRequest(router, http.MethodGet, "/x", nil, nil)

	testutil.AssertStatusCode(t, http.StatusOK, w)
}

func TestLogger_WritesRequestFields(t *testing.T) {
	var buf bytes.Buffer
	mw := middleware.NewLoggingMiddlewareWithLogger(zerolog.New(&buf))

	router := testutil.SetupTestRouter()
	router.Use(mw.RequestLogger(), mw.Logger())
	router.GET("/collections/:name", func(c *gin.Context) {
		logger := middleware.GetRequestLogger(c)
		logger.Info().Msg("inside")
		c.Status(http.StatusTeapot)
	})

	testutil.PerformRequest(router, http.MethodGet, "/collections/users?x=1", nil, map[string]string{"X-Request-ID": "req-1"})

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"collection":"users"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"query":"x=1"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestCORS(t *testing.T) {
	router := testutil.SetupTestRouter()
	router.Use(middleware.NewCORSMiddleware(middleware.DefaultCORSConfig([]string{"http://localhost:3000"})))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := testutil.PerformRequest(router, http.MethodGet, "/x", nil, map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), middleware.APIKeyHeader)

	w = testutil.PerformRequest(router, http.MethodGet, "/x", nil, map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
