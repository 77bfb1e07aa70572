//go:build integration

package arango_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/arango-client/pkg/arango"
)

// These tests run against a live server, e.g. one started by cmd/arango-setup:
//
//	ARANGO_URL=http://127.0.0.1:8529 go test -tags integration ./pkg/arango/...
func integrationDatabase(t *testing.T) *arango.Database {
	t.Helper()

	url := os.Getenv("ARANGO_URL")
	if url == "" {
		t.Skip("ARANGO_URL not set")
	}

	db, err := arango.NewDatabase(&arango.ConnectionConfig{
		URL:      url,
		Username: os.Getenv("ARANGO_USERNAME"),
		Password: os.Getenv("ARANGO_PASSWORD"),
	})
	require.NoError(t, err)
	return db
}

func tempCollection(t *testing.T, db *arango.Database) *arango.Collection {
	t.Helper()

	name := fmt.Sprintf("it_%s", uuid.New().String()[:8])
	collection, err := db.CreateCollection(context.Background(), name, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = collection.Drop(ctx)
	})
	return collection
}

func TestIntegration_Version(t *testing.T) {
	db := integrationDatabase(t)

	info, err := db.Version(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, info.Version)
}

func TestIntegration_DocumentRoundTrip(t *testing.T) {
	db := integrationDatabase(t)
	ctx := context.Background()
	collection := tempCollection(t, db)

	doc, err := collection.CreateDocument(ctx, map[string]interface{}{"color": "red"})
	require.NoError(t, err)

	fetched, err := collection.Document(ctx, doc.Key())
	require.NoError(t, err)
	color, _ := fetched.Get("color")
	assert.Equal(t, "red", color)

	_, err = collection.Document(ctx, "does-not-exist")
	assert.True(t, arango.IsDocumentNotFound(err))
}

func TestIntegration_CollectionNotFound(t *testing.T) {
	db := integrationDatabase(t)

	_, err := db.Collection(context.Background(), "missing_"+uuid.New().String()[:8])

	assert.True(t, arango.IsCollectionNotFound(err))
}

func TestIntegration_GetOrCreate(t *testing.T) {
	db := integrationDatabase(t)
	ctx := context.Background()
	name := "it_" + uuid.New().String()[:8]

	created, err := db.GetOrCreate(ctx, name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = created.Drop(context.Background()) })

	again, err := db.GetOrCreate(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, created.ID(), again.ID())
}

func TestIntegration_CursorBatches(t *testing.T) {
	db := integrationDatabase(t)
	ctx := context.Background()
	collection := tempCollection(t, db)

	for i := 0; i < 5; i++ {
		_, err := collection.CreateDocument(ctx, map[string]interface{}{"n": i})
		require.NoError(t, err)
	}

	query := fmt.Sprintf("FOR d IN %s RETURN d", collection.Name())
	cursor, err := db.Query().Execute(ctx, query, arango.Options{"batch_size": 2, "count": true})
	require.NoError(t, err)

	docs, err := cursor.All(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 5)
}

func TestIntegration_Valid(t *testing.T) {
	db := integrationDatabase(t)
	ctx := context.Background()

	valid, err := db.Query().Valid(ctx, "FOR u IN users RETURN u")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = db.Query().Valid(ctx, "FOR u IN RETURN")
	require.NoError(t, err)
	assert.False(t, valid)
}
