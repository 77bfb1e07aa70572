package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unifiedui/arango-client/pkg/arango"
)

// Request is one request seen by a FakeArango.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Body     map[string]interface{}
}

// RouteFunc answers one request. body is the decoded JSON request body.
type RouteFunc func(w http.ResponseWriter, r *http.Request, body map[string]interface{})

// FakeArango is a scripted ArangoDB server. Routes are keyed by
// "METHOD /_api/path"; unmatched requests get a 404 with errorNum 404.
type FakeArango struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]RouteFunc
	requests []Request
}

// NewFakeArango starts a fake server that is closed with the test.
func NewFakeArango(t *testing.T) *FakeArango {
	t.Helper()

	f := &FakeArango{routes: map[string]RouteFunc{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Database returns a client for the fake server.
func (f *FakeArango) Database(t *testing.T) *arango.Database {
	t.Helper()
	db, err := arango.NewDatabase(&arango.ConnectionConfig{URL: f.URL})
	require.NoError(t, err)
	return db
}

// Handle registers a route, e.g. Handle("GET /_api/version", fn).
func (f *FakeArango) Handle(route string, fn RouteFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = fn
}

// Reply registers a route answering with a fixed JSON body.
func (f *FakeArango) Reply(route string, status int, v interface{}) {
	f.Handle(route, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		WriteJSON(w, status, v)
	})
}

// Fail registers a route answering with an ArangoDB error body.
func (f *FakeArango) Fail(route string, status, errorNum int, message string) {
	f.Handle(route, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		WriteArangoError(w, status, errorNum, message)
	})
}

// Requests returns a copy of the requests received so far.
func (f *FakeArango) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *FakeArango) serve(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, Request{Method: r.Method, Path: r.URL.Path, RawQuery: r.URL.RawQuery, Body: body})
	fn, ok := f.routes[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if !ok {
		WriteArangoError(w, http.StatusNotFound, 404, "unknown path "+r.URL.Path)
		return
	}
	fn(w, r, body)
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteArangoError writes an ArangoDB error body.
func WriteArangoError(w http.ResponseWriter, status, errorNum int, message string) {
	WriteJSON(w, status, map[string]interface{}{
		"error":        true,
		"code":         status,
		"errorNum":     errorNum,
		"errorMessage": message,
	})
}

// CursorPage is a cursor reply body.
func CursorPage(id string, hasMore bool, docs ...map[string]interface{}) map[string]interface{} {
	result := make([]interface{}, len(docs))
	for i, d := range docs {
		result[i] = d
	}
	page := map[string]interface{}{"result": result, "hasMore": hasMore}
	if id != "" {
		page["id"] = id
	}
	return page
}
