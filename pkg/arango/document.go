package arango

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// System attributes lifted out of a document's field map.
const (
	attrID  = "_id"
	attrKey = "_key"
	attrRev = "_rev"
)

// Document is one record as last received from the server.
type Document struct {
	id       string
	key      string
	revision string
	fields   map[string]interface{}
	db       *Database
}

// documentHandle is the reply to create, replace and delete requests.
type documentHandle struct {
	ID  flexString `json:"_id"`
	Key flexString `json:"_key"`
	Rev flexString `json:"_rev"`
}

// flexString accepts a JSON string or number; old servers send numeric ids
// and revisions.
type flexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *flexString) UnmarshalJSON(data []byte) error {
	switch {
	case len(data) == 0 || string(data) == "null":
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
	default:
		*s = flexString(data)
	}
	return nil
}

// newDocument builds a Document from a decoded JSON object.
func newDocument(db *Database, raw map[string]interface{}) *Document {
	doc := &Document{
		fields: make(map[string]interface{}, len(raw)),
		db:     db,
	}
	for name, value := range raw {
		switch name {
		case attrID:
			doc.id, _ = value.(string)
		case attrKey:
			doc.key, _ = value.(string)
		case attrRev:
			doc.revision = revisionString(value)
		default:
			doc.fields[name] = value
		}
	}
	if doc.key == "" {
		doc.key = keyFromID(doc.id)
	}
	return doc
}

// decodeDocument builds a Document from raw JSON.
func decodeDocument(db *Database, data json.RawMessage) (*Document, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if raw == nil {
		return nil, NewValidationError("result is not a document", string(data))
	}
	return newDocument(db, raw), nil
}

// Old servers send numeric revisions.
func revisionString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func keyFromID(id string) string {
	if i := strings.IndexByte(id, '/'); i >= 0 {
		return id[i+1:]
	}
	return ""
}

// ID returns the document handle ("collection/key").
func (d *Document) ID() string { return d.id }

// Key returns the document key.
func (d *Document) Key() string { return d.key }

// Revision returns the document revision.
func (d *Document) Revision() string { return d.revision }

// CollectionName returns the collection part of the document handle.
func (d *Document) CollectionName() string {
	if i := strings.IndexByte(d.id, '/'); i >= 0 {
		return d.id[:i]
	}
	return ""
}

// Get returns the value of a field.
func (d *Document) Get(field string) (interface{}, bool) {
	v, ok := d.fields[field]
	return v, ok
}

// Set changes a field locally; Save sends it to the server.
func (d *Document) Set(field string, value interface{}) {
	d.fields[field] = value
}

// Fields returns a copy of the field map, without system attributes.
func (d *Document) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(d.fields))
	for k, v := range d.fields {
		out[k] = v
	}
	return out
}

// Map returns the fields together with the system attributes.
func (d *Document) Map() map[string]interface{} {
	out := d.Fields()
	if d.id != "" {
		out[attrID] = d.id
	}
	if d.key != "" {
		out[attrKey] = d.key
	}
	if d.revision != "" {
		out[attrRev] = d.revision
	}
	return out
}

// MarshalJSON encodes the document with its system attributes.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// Decode copies the document, system attributes included, into v.
func (d *Document) Decode(v interface{}) error {
	data, err := json.Marshal(d.Map())
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

func (d *Document) path() (string, error) {
	if d.db == nil || d.id == "" {
		return "", NewValidationError("document is not bound to a stored record", d.id)
	}
	collection, key, ok := strings.Cut(d.id, "/")
	if !ok || collection == "" || key == "" {
		return "", NewValidationError("malformed document handle", d.id)
	}
	return "document/" + url.PathEscape(collection) + "/" + url.PathEscape(key), nil
}

// Refresh reloads the document from the server.
func (d *Document) Refresh(ctx context.Context) error {
	path, err := d.path()
	if err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := d.db.SendRequest(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}

	fresh := newDocument(d.db, raw)
	d.id, d.key, d.revision, d.fields = fresh.id, fresh.key, fresh.revision, fresh.fields
	return nil
}

// Save replaces the stored record with the current fields.
func (d *Document) Save(ctx context.Context) error {
	path, err := d.path()
	if err != nil {
		return err
	}

	var handle documentHandle
	if err := d.db.SendRequest(ctx, http.MethodPut, path, d.fields, &handle); err != nil {
		return err
	}
	d.revision = string(handle.Rev)
	return nil
}

// Delete removes the stored record.
func (d *Document) Delete(ctx context.Context) error {
	path, err := d.path()
	if err != nil {
		return err
	}
	return d.db.SendRequest(ctx, http.MethodDelete, path, nil, nil)
}
