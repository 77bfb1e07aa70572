package arango_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/arango-client/pkg/arango"
)

// collectionProperties answers GET collection/{name}/properties for reference resolution.
func collectionProperties(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet && r.URL.Path == "/_api/collection/users/properties" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "1234", "name": "users", "status": 3})
		return true
	}
	return false
}

func emptyCursor(w http.ResponseWriter) {
	writeJSON(w, http.StatusCreated, map[string]interface{}{"result": []interface{}{}, "hasMore": false})
}

// TestQuery_ShapesFilterAndCamelCaseOptions tests the accepted fields of every simple query shape.
func TestQuery_ShapesFilterAndCamelCaseOptions(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		run      func(q *arango.Query) (*arango.Cursor, error)
		expected map[string]interface{}
	}{
		{
			name: "all",
			path: "/_api/simple/all",
			run: func(q *arango.Query) (*arango.Cursor, error) {
				return q.All(context.Background(), arango.Options{"limit": 10, "skip": 2, "batch_size": 5})
			},
			expected: map[string]interface{}{"collection": "users", "limit": float64(10), "skip": float64(2)},
		},
		{
			name: "by example",
			path: "/_api/simple/by-example",
			run: func(q *arango.Query) (*arango.Cursor, error) {
				return q.ByExample(context.Background(), map[string]interface{}{"color": "red"}, arango.Options{"limit": 1, "radius": 3})
			},
			expected: map[string]interface{}{
				"collection": "users",
				"limit":      float64(1),
				"example":    map[string]interface{}{"color": "red"},
			},
		},
		{
			name: "near",
			path: "/_api/simple/near",
			run: func(q *arango.Query) (*arango.Cursor, error) {
				return q.Near(context.Background(), arango.Options{"latitude": 1.5, "longitude": 2.5, "geo": "geo1", "radius": 10})
			},
			expected: map[string]interface{}{"collection": "users", "latitude": 1.5, "longitude": 2.5, "geo": "geo1"},
		},
		{
			name: "within",
			path: "/_api/simple/within",
			run: func(q *arango.Query) (*arango.Cursor, error) {
				return q.Within(context.Background(), arango.Options{"latitude": 1.5, "longitude": 2.5, "radius": 10, "attribute": "x"})
			},
			expected: map[string]interface{}{"collection": "users", "latitude": 1.5, "longitude": 2.5, "radius": float64(10)},
		},
		{
			name: "range",
			path: "/_api/simple/range",
			run: func(q *arango.Query) (*arango.Cursor, error) {
				return q.InRange(context.Background(), arango.Options{"attribute": "age", "left": 18, "right": 30, "closed": true, "example": "x"})
			},
			expected: map[string]interface{}{
				"collection": "users",
				"attribute":  "age",
				"left":       float64(18),
				"right":      float64(30),
				"closed":     true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
				if collectionProperties(w, r) {
					return
				}
				emptyCursor(w)
			})

			cursor, err := tt.run(db.CollectionReference("users").Query())
			require.NoError(t, err)
			require.NotNil(t, cursor)

			requests := fs.Requests()
			require.Len(t, requests, 2)
			assert.Equal(t, http.MethodPut, requests[1].Method)
			assert.Equal(t, tt.path, requests[1].Path)
			assert.Equal(t, tt.expected, requests[1].Body)
		})
	}
}

func TestQuery_CollectionShapesRequireCollection(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		emptyCursor(w)
	})
	q := db.Query()
	ctx := context.Background()

	assert.Equal(t, arango.ScopeDatabase, q.Scope())
	assert.Nil(t, q.Collection())

	_, err := q.All(ctx, nil)
	assert.True(t, errors.Is(err, arango.ErrNoCollectionProvided))

	_, err = q.ByExample(ctx, map[string]interface{}{"a": 1}, nil)
	assert.True(t, arango.IsNoCollectionProvided(err))

	_, err = q.Near(ctx, arango.Options{"latitude": 1, "longitude": 2})
	assert.True(t, arango.IsNoCollectionProvided(err))

	_, err = q.Within(ctx, arango.Options{"latitude": 1, "longitude": 2, "radius": 3})
	assert.True(t, arango.IsNoCollectionProvided(err))

	_, err = q.InRange(ctx, arango.Options{"attribute": "age"})
	assert.True(t, arango.IsNoCollectionProvided(err))

	_, err = q.FirstExample(ctx, map[string]interface{}{"a": 1})
	assert.True(t, arango.IsNoCollectionProvided(err))

	assert.Empty(t, fs.Requests())
}

func TestQuery_ExecuteSendsCursorRequest(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"result":  []interface{}{map[string]interface{}{"_id": "users/1", "_key": "1", "_rev": "11", "name": "a"}},
			"hasMore": false,
			"count":   1,
		})
	})

	cursor, err := db.Query().Execute(context.Background(), "FOR u IN users RETURN u", arango.Options{
		"batch_size": 10,
		"count":      true,
		"bind_vars":  map[string]interface{}{"x": 1},
		"limit":      5,
	})
	require.NoError(t, err)

	requests := fs.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].Method)
	assert.Equal(t, "/_api/cursor", requests[0].Path)
	assert.Equal(t, map[string]interface{}{
		"query":     "FOR u IN users RETURN u",
		"batchSize": float64(10),
		"count":     true,
		"bindVars":  map[string]interface{}{"x": float64(1)},
	}, requests[0].Body)

	count, ok := cursor.Count()
	assert.True(t, ok)
	assert.Equal(t, int64(1), count)

	docs, err := cursor.All(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "users/1", docs[0].ID())
}

func TestQuery_ExecuteOnCollectionScope(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		emptyCursor(w)
	})

	_, err := db.CollectionReference("users").Query().Execute(context.Background(), "FOR u IN users RETURN u", nil)
	require.NoError(t, err)

	requests := fs.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/_api/cursor", requests[0].Path)
}

func TestQuery_ExecuteRejectsEmptyQuery(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		emptyCursor(w)
	})

	_, err := db.Query().Execute(context.Background(), "  ", nil)

	assert.True(t, arango.IsValidationError(err))
	assert.Empty(t, fs.Requests())
}

func TestQuery_Valid(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		errorNum  int
		expected  bool
		expectErr bool
	}{
		{name: "valid query", status: http.StatusOK, expected: true},
		{name: "syntax error", status: http.StatusBadRequest, errorNum: 1501, expected: false},
		{name: "server failure", status: http.StatusInternalServerError, errorNum: 4, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
				if tt.errorNum != 0 {
					writeServerError(w, tt.status, tt.errorNum, "failure")
					return
				}
				writeJSON(w, tt.status, map[string]interface{}{"bindVars": []string{}, "collections": []string{"users"}})
			})

			valid, err := db.Query().Valid(context.Background(), "FOR u IN users RETURN u")

			if tt.expectErr {
				require.Error(t, err)
				assert.True(t, arango.IsServerError(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, valid)

			requests := fs.Requests()
			require.Len(t, requests, 1)
			assert.Equal(t, http.MethodPost, requests[0].Method)
			assert.Equal(t, "/_api/query", requests[0].Path)
			assert.Equal(t, map[string]interface{}{"query": "FOR u IN users RETURN u"}, requests[0].Body)
		})
	}
}

func TestQuery_FirstExample(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		if collectionProperties(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"document": map[string]interface{}{"_id": "users/7", "_key": "7", "_rev": "70", "color": "red"},
		})
	})

	doc, err := db.CollectionReference("users").Query().FirstExample(context.Background(), map[string]interface{}{"color": "red"})
	require.NoError(t, err)

	assert.Equal(t, "users/7", doc.ID())
	assert.Equal(t, "7", doc.Key())
	assert.Equal(t, "70", doc.Revision())
	color, ok := doc.Get("color")
	assert.True(t, ok)
	assert.Equal(t, "red", color)

	requests := fs.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "/_api/simple/first-example", requests[1].Path)
	assert.Equal(t, map[string]interface{}{
		"collection": "users",
		"example":    map[string]interface{}{"color": "red"},
	}, requests[1].Body)
}

func TestQuery_FirstExampleNoMatch(t *testing.T) {
	_, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		if collectionProperties(w, r) {
			return
		}
		writeServerError(w, http.StatusNotFound, 404, "no match")
	})

	_, err := db.CollectionReference("users").Query().FirstExample(context.Background(), map[string]interface{}{"color": "blue"})

	assert.True(t, arango.IsDocumentNotFound(err))
}

func TestQuery_CollectionScopeAccessors(t *testing.T) {
	_, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {})
	collection := db.CollectionReference("users")

	q := collection.Query()

	assert.Equal(t, arango.ScopeCollection, q.Scope())
	assert.Equal(t, "collection", q.Scope().String())
	assert.Same(t, collection, q.Collection())
	assert.Equal(t, "database", db.Query().Scope().String())
}
