package arango_test

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

// recordedRequest is what the fake server saw for one request.
type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Body     map[string]interface{}
	Username string
	Password string
}

// fakeServer is a scripted ArangoDB stand-in.
type fakeServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, body map[string]interface{})

func newFakeServer(t *testing.T, handler handlerFunc) (*fakeServer, *arango.Database) {
	t.Helper()

	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &body)
		}

		user, pass, _ := r.BasicAuth()
		fs.mu.Lock()
		fs.requests = append(fs.requests, recordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Body:     body,
			Username: user,
			Password: pass,
		})
		fs.mu.Unlock()

		handler(w, r, body)
	}))
	t.Cleanup(fs.Close)

	db, err := arango.NewDatabase(&arango.ConnectionConfig{URL: fs.URL})
	require.NoError(t, err)

	return fs, db
}

func (fs *fakeServer) Requests() []recordedRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]recordedRequest, len(fs.requests))
	copy(out, fs.requests)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeServerError(w http.ResponseWriter, status, errorNum int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":        true,
		"code":         status,
		"errorNum":     errorNum,
		"errorMessage": message,
	})
}
