package arango

import (
	"context"
	"net/http"
	"net/url"
)

// VersionInfo is the reply of the version endpoint.
type VersionInfo struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// CollectionOptions are optional properties for CreateCollection.
type CollectionOptions struct {
	WaitForSync bool
	Type        CollectionType
}

// Database is the entry point: it lists, fetches and creates collections
// and builds database-scoped queries. It holds no collection state.
type Database struct {
	conn *Connection
}

// NewDatabase connects to the server described by cfg.
func NewDatabase(cfg *ConnectionConfig) (*Database, error) {
	conn, err := NewConnection(cfg)
	if err != nil {
		return nil, err
	}
	return &Database{conn: conn}, nil
}

// NewDatabaseWithConnection wraps an existing connection.
func NewDatabaseWithConnection(conn *Connection) *Database {
	return &Database{conn: conn}
}

// Connection returns the underlying connection.
func (db *Database) Connection() *Connection {
	return db.conn
}

// SendRequest forwards to the connection.
func (db *Database) SendRequest(ctx context.Context, method, path string, body, out interface{}) error {
	return db.conn.SendRequest(ctx, method, path, body, out)
}

// Authenticate forwards new credentials to the connection.
func (db *Database) Authenticate(username, password string) {
	db.conn.Authenticate(username, password)
}

// Version returns the server version.
func (db *Database) Version(ctx context.Context) (*VersionInfo, error) {
	var info VersionInfo
	if err := db.SendRequest(ctx, http.MethodGet, "version", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Collections lists all collections in server order.
func (db *Database) Collections(ctx context.Context) ([]*Collection, error) {
	var resp struct {
		Collections []*collectionInfo `json:"collections"`
	}
	if err := db.SendRequest(ctx, http.MethodGet, "collection", nil, &resp); err != nil {
		return nil, err
	}

	collections := make([]*Collection, 0, len(resp.Collections))
	for _, info := range resp.Collections {
		collections = append(collections, newCollection(db, info))
	}
	return collections, nil
}

// Collection fetches a collection by name or id.
func (db *Database) Collection(ctx context.Context, ident string) (*Collection, error) {
	if ident == "" {
		return nil, NewValidationError("collection name or id is required", "")
	}

	var info collectionInfo
	if err := db.SendRequest(ctx, http.MethodGet, "collection/"+url.PathEscape(ident), nil, &info); err != nil {
		return nil, err
	}
	return newCollection(db, &info), nil
}

// CollectionReference returns a collection handle without a server round
// trip; the missing half of its identity is resolved on first use.
func (db *Database) CollectionReference(ident string) *Collection {
	return &Collection{db: db, ident: ident}
}

// CreateCollection creates a collection.
func (db *Database) CreateCollection(ctx context.Context, name string, opts *CollectionOptions) (*Collection, error) {
	if name == "" {
		return nil, NewValidationError("collection name is required", "")
	}

	body := map[string]interface{}{"name": name}
	if opts != nil {
		if opts.WaitForSync {
			body["waitForSync"] = true
		}
		if opts.Type != 0 {
			body["type"] = opts.Type
		}
	}

	var info collectionInfo
	if err := db.SendRequest(ctx, http.MethodPost, "collection", body, &info); err != nil {
		return nil, err
	}
	if info.Name == "" {
		info.Name = name
	}
	return newCollection(db, &info), nil
}

// GetOrCreate fetches a collection and creates it, named ident, when the
// server reports it missing. The two steps are not atomic: a concurrent
// creation surfaces as the server's duplicate-name error.
func (db *Database) GetOrCreate(ctx context.Context, ident string) (*Collection, error) {
	collection, err := db.Collection(ctx, ident)
	if err == nil {
		return collection, nil
	}
	if !IsCollectionNotFound(err) {
		return nil, err
	}
	return db.CreateCollection(ctx, ident, nil)
}

// Query returns a database-scoped Query.
func (db *Database) Query() *Query {
	return &Query{scope: ScopeDatabase, db: db}
}
