// Package docdb defines the document database used as an export sink.
package docdb

import (
	"context"
)

// Type represents the type of document database.
type Type string

const (
	// TypeMongoDB represents a MongoDB database.
	TypeMongoDB Type = "mongodb"
	// TypeCosmosDB represents an Azure Cosmos DB database (MongoDB API).
	TypeCosmosDB Type = "cosmosdb"
)

// Collection defines the collection operations an export needs.
type Collection interface {
	// InsertMany inserts documents and returns their ids.
	InsertMany(ctx context.Context, documents []interface{}) ([]interface{}, error)

	// DeleteMany deletes the documents matching filter and returns how many were removed.
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)

	// CountDocuments counts documents matching the filter.
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

// Client defines the interface for a document database client.
type Client interface {
	// Collection returns a collection by name.
	Collection(name string) Collection

	// ListCollectionNames lists all collection names.
	ListCollectionNames(ctx context.Context) ([]string, error)

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close(ctx context.Context) error
}
