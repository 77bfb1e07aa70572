package arango_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/arango-client/pkg/arango"
)

func TestDatabase_Version(t *testing.T) {
	_, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		writeJSON(w, http.StatusOK, map[string]string{"server": "arango", "version": "1.4.0"})
	})

	info, err := db.Version(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "arango", info.Server)
	assert.Equal(t, "1.4.0", info.Version)
}

func TestDatabase_Collections(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"collections": []interface{}{
				map[string]interface{}{"id": "11", "name": "users", "status": 3, "type": 2},
				map[string]interface{}{"id": 12, "name": "edges", "status": 2, "type": 3},
			},
		})
	})

	collections, err := db.Collections(context.Background())
	require.NoError(t, err)

	require.Len(t, collections, 2)
	assert.Equal(t, "users", collections[0].Name())
	assert.Equal(t, "11", collections[0].ID())
	assert.Equal(t, arango.StatusLoaded, collections[0].Status())
	assert.True(t, collections[0].Status().IsLoaded())
	assert.Equal(t, arango.CollectionTypeDocument, collections[0].Type())
	assert.Equal(t, "edges", collections[1].Name())
	assert.Equal(t, "12", collections[1].ID())
	assert.Equal(t, arango.StatusUnloaded, collections[1].Status())
	assert.Equal(t, arango.CollectionTypeEdge, collections[1].Type())
	assert.Same(t, db, collections[0].Database())

	requests := fs.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/_api/collection", requests[0].Path)
}

func TestDatabase_CollectionsEmpty(t *testing.T) {
	_, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"collections": []interface{}{}})
	})

	collections, err := db.Collections(context.Background())

	require.NoError(t, err)
	assert.Empty(t, collections)
}

func TestDatabase_Collection(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "11", "name": "users", "status": 3})
	})

	collection, err := db.Collection(context.Background(), "users")

	require.NoError(t, err)
	assert.Equal(t, "users", collection.Name())
	assert.Equal(t, "11", collection.ID())
	assert.Equal(t, "/_api/collection/users", fs.Requests()[0].Path)
}

func TestDatabase_CollectionNotFound(t *testing.T) {
	_, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		writeServerError(w, http.StatusNotFound, 1203, "collection not found")
	})

	collection, err := db.Collection(context.Background(), "missing")

	require.Error(t, err)
	assert.Nil(t, collection)
	assert.True(t, arango.IsCollectionNotFound(err))
	assert.Contains(t, err.Error(), "missing")
}

func TestDatabase_CollectionRequiresName(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {})

	_, err := db.Collection(context.Background(), "")

	assert.True(t, arango.IsValidationError(err))
	assert.Empty(t, fs.Requests())
}

func TestDatabase_CreateCollection(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "99", "name": body["name"], "status": 3, "waitForSync": true})
	})

	collection, err := db.CreateCollection(context.Background(), "events", &arango.CollectionOptions{
		WaitForSync: true,
		Type:        arango.CollectionTypeEdge,
	})

	require.NoError(t, err)
	assert.Equal(t, "events", collection.Name())
	assert.Equal(t, "99", collection.ID())

	requests := fs.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].Method)
	assert.Equal(t, map[string]interface{}{"name": "events", "waitForSync": true, "type": float64(3)}, requests[0].Body)
}

// TestDatabase_GetOrCreateCreatesMissing tests the fetch-then-create sequence.
func TestDatabase_GetOrCreateCreatesMissing(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		if r.Method == http.MethodGet {
			writeServerError(w, http.StatusNotFound, 1203, "collection not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "5", "name": "x", "status": 3})
	})

	collection, err := db.GetOrCreate(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, "x", collection.Name())

	requests := fs.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, http.MethodGet, requests[0].Method)
	assert.Equal(t, "/_api/collection/x", requests[0].Path)
	assert.Equal(t, http.MethodPost, requests[1].Method)
	assert.Equal(t, "/_api/collection", requests[1].Path)
	assert.Equal(t, map[string]interface{}{"name": "x"}, requests[1].Body)
}

func TestDatabase_GetOrCreateReturnsExisting(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": "5", "name": "x", "status": 3})
	})

	collection, err := db.GetOrCreate(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, "5", collection.ID())
	assert.Len(t, fs.Requests(), 1)
}

func TestDatabase_GetOrCreatePropagatesCreateError(t *testing.T) {
	_, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		if r.Method == http.MethodGet {
			writeServerError(w, http.StatusNotFound, 1203, "collection not found")
			return
		}
		writeServerError(w, http.StatusConflict, 1207, "duplicate name")
	})

	_, err := db.GetOrCreate(context.Background(), "x")

	require.Error(t, err)
	assert.True(t, arango.IsClientError(err))
}

func TestDatabase_GetOrCreateDoesNotCreateOnOtherErrors(t *testing.T) {
	fs, db := newFakeServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]interface{}) {
		writeServerError(w, http.StatusInternalServerError, 4, "boom")
	})

	_, err := db.GetOrCreate(context.Background(), "x")

	assert.True(t, arango.IsServerError(err))
	assert.Len(t, fs.Requests(), 1)
}
