package arango

import (
	"context"
	"net/http"
	"net/url"
)

// CollectionStatus is the load state the server reports for a collection.
type CollectionStatus int

const (
	StatusNewBorn       CollectionStatus = 1
	StatusUnloaded      CollectionStatus = 2
	StatusLoaded        CollectionStatus = 3
	StatusBeingUnloaded CollectionStatus = 4
	StatusDeleted       CollectionStatus = 5
	StatusCorrupted     CollectionStatus = 0
)

// String returns a readable status name.
func (s CollectionStatus) String() string {
	switch s {
	case StatusNewBorn:
		return "new born"
	case StatusUnloaded:
		return "unloaded"
	case StatusLoaded:
		return "loaded"
	case StatusBeingUnloaded:
		return "being unloaded"
	case StatusDeleted:
		return "deleted"
	default:
		return "corrupted"
	}
}

// IsLoaded reports whether the collection is loaded.
func (s CollectionStatus) IsLoaded() bool { return s == StatusLoaded }

func toStatus(v int) CollectionStatus {
	if v >= int(StatusNewBorn) && v <= int(StatusDeleted) {
		return CollectionStatus(v)
	}
	return StatusCorrupted
}

// CollectionType distinguishes document and edge collections.
type CollectionType int

const (
	CollectionTypeDocument CollectionType = 2
	CollectionTypeEdge     CollectionType = 3
)

// collectionInfo is the server representation of a collection.
type collectionInfo struct {
	ID          flexString     `json:"id"`
	Name        string         `json:"name"`
	Status      int            `json:"status"`
	Type        CollectionType `json:"type,omitempty"`
	WaitForSync *bool          `json:"waitForSync,omitempty"`
	Count       *int64         `json:"count,omitempty"`
}

// Collection is a named group of documents. A Collection returned by a
// Database call knows both its name and id; a CollectionReference knows one
// of them and resolves the other on first use.
type Collection struct {
	db          *Database
	ident       string
	id          string
	name        string
	status      CollectionStatus
	kind        CollectionType
	waitForSync bool
	resolved    bool
}

func newCollection(db *Database, info *collectionInfo) *Collection {
	c := &Collection{db: db}
	c.apply(info)
	return c
}

func (c *Collection) apply(info *collectionInfo) {
	if info.ID != "" {
		c.id = string(info.ID)
	}
	if info.Name != "" {
		c.name = info.Name
	}
	if info.Status != 0 {
		c.status = toStatus(info.Status)
	}
	if info.Type != 0 {
		c.kind = info.Type
	}
	if info.WaitForSync != nil {
		c.waitForSync = *info.WaitForSync
	}
	c.resolved = c.id != "" && c.name != ""
}

// Name returns the collection name; empty for an unresolved reference made
// from an id.
func (c *Collection) Name() string { return c.name }

// ID returns the server-assigned identifier; empty for an unresolved
// reference made from a name.
func (c *Collection) ID() string { return c.id }

// Status returns the status seen by the last server round trip.
func (c *Collection) Status() CollectionStatus { return c.status }

// Type returns the collection type seen by the last server round trip.
func (c *Collection) Type() CollectionType { return c.kind }

// Database returns the owning database.
func (c *Collection) Database() *Database { return c.db }

// Query returns a Query bound to this collection.
func (c *Collection) Query() *Query {
	return &Query{scope: ScopeCollection, db: c.db, collection: c}
}

// resolve fills in whichever of name and id is missing.
func (c *Collection) resolve(ctx context.Context) error {
	if c.resolved {
		return nil
	}
	return c.Refresh(ctx)
}

func (c *Collection) identifier() string {
	switch {
	case c.name != "":
		return c.name
	case c.id != "":
		return c.id
	default:
		return c.ident
	}
}

func (c *Collection) path(suffix string) string {
	p := "collection/" + url.PathEscape(c.identifier())
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

// Refresh re-reads name, id, status and properties from the server.
func (c *Collection) Refresh(ctx context.Context) error {
	var info collectionInfo
	if err := c.db.SendRequest(ctx, http.MethodGet, c.path("properties"), nil, &info); err != nil {
		return err
	}
	c.apply(&info)
	return nil
}

func (c *Collection) documentPath(key string) (string, error) {
	if key == "" {
		return "", NewValidationError("document key is required", "")
	}
	return "document/" + url.PathEscape(c.name) + "/" + url.PathEscape(key), nil
}

// Document fetches a document by key.
func (c *Collection) Document(ctx context.Context, key string) (*Document, error) {
	if err := c.resolve(ctx); err != nil {
		return nil, err
	}
	path, err := c.documentPath(key)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := c.db.SendRequest(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return newDocument(c.db, raw), nil
}

// CreateDocument stores a new document and returns it with its server
// assigned id, key and revision.
func (c *Collection) CreateDocument(ctx context.Context, fields map[string]interface{}) (*Document, error) {
	if err := c.resolve(ctx); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}

	var handle documentHandle
	path := "document?collection=" + url.QueryEscape(c.name)
	if err := c.db.SendRequest(ctx, http.MethodPost, path, fields, &handle); err != nil {
		return nil, err
	}
	return c.documentFromHandle(&handle, fields), nil
}

// ReplaceDocument overwrites the document stored under key.
func (c *Collection) ReplaceDocument(ctx context.Context, key string, fields map[string]interface{}) (*Document, error) {
	if err := c.resolve(ctx); err != nil {
		return nil, err
	}
	path, err := c.documentPath(key)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}

	var handle documentHandle
	if err := c.db.SendRequest(ctx, http.MethodPut, path, fields, &handle); err != nil {
		return nil, err
	}
	if handle.Key == "" {
		handle.Key = flexString(key)
	}
	return c.documentFromHandle(&handle, fields), nil
}

// DeleteDocument removes the document stored under key.
func (c *Collection) DeleteDocument(ctx context.Context, key string) error {
	if err := c.resolve(ctx); err != nil {
		return err
	}
	path, err := c.documentPath(key)
	if err != nil {
		return err
	}
	return c.db.SendRequest(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Collection) documentFromHandle(handle *documentHandle, fields map[string]interface{}) *Document {
	raw := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		raw[k] = v
	}
	raw[attrID] = string(handle.ID)
	raw[attrKey] = string(handle.Key)
	raw[attrRev] = string(handle.Rev)
	return newDocument(c.db, raw)
}

// Count returns the number of documents in the collection.
func (c *Collection) Count(ctx context.Context) (int64, error) {
	var info collectionInfo
	if err := c.db.SendRequest(ctx, http.MethodGet, c.path("count"), nil, &info); err != nil {
		return 0, err
	}
	c.apply(&info)
	if info.Count == nil {
		return 0, nil
	}
	return *info.Count, nil
}

// Truncate removes all documents.
func (c *Collection) Truncate(ctx context.Context) error {
	return c.update(ctx, "truncate", nil)
}

// Load loads the collection into server memory.
func (c *Collection) Load(ctx context.Context) error {
	return c.update(ctx, "load", nil)
}

// Unload releases the collection from server memory.
func (c *Collection) Unload(ctx context.Context) error {
	return c.update(ctx, "unload", nil)
}

// Rename changes the collection name.
func (c *Collection) Rename(ctx context.Context, name string) error {
	if name == "" {
		return NewValidationError("collection name is required", "")
	}
	return c.update(ctx, "rename", map[string]interface{}{"name": name})
}

// WaitForSync reports whether writes are synced to disk before returning.
func (c *Collection) WaitForSync(ctx context.Context) (bool, error) {
	if err := c.Refresh(ctx); err != nil {
		return false, err
	}
	return c.waitForSync, nil
}

// SetWaitForSync changes the waitForSync property.
func (c *Collection) SetWaitForSync(ctx context.Context, wait bool) error {
	return c.update(ctx, "properties", map[string]interface{}{"waitForSync": wait})
}

func (c *Collection) update(ctx context.Context, action string, body interface{}) error {
	var info collectionInfo
	if err := c.db.SendRequest(ctx, http.MethodPut, c.path(action), body, &info); err != nil {
		return err
	}
	c.apply(&info)
	return nil
}

// Drop deletes the collection and all its documents.
func (c *Collection) Drop(ctx context.Context) error {
	if err := c.db.SendRequest(ctx, http.MethodDelete, c.path(""), nil, nil); err != nil {
		return err
	}
	c.status = StatusDeleted
	return nil
}
