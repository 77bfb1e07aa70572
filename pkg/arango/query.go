package arango

import (
	"context"
	"net/http"
	"sort"
	"strings"
)

// Scope says what a Query is bound to.
type Scope int

const (
	// ScopeDatabase queries can only execute and validate AQL.
	ScopeDatabase Scope = iota
	// ScopeCollection queries can also run the simple query shapes.
	ScopeCollection
)

// String returns the scope name.
func (s Scope) String() string {
	if s == ScopeCollection {
		return "collection"
	}
	return "database"
}

// Options are caller options keyed by snake_case name, e.g. "batch_size".
// Keys a query shape does not accept are dropped.
type Options map[string]interface{}

// shape describes one request kind: its endpoint, method and accepted fields.
type shape struct {
	name       string
	path       string
	method     string
	allowed    []string
	collection bool
}

var (
	shapeAll = shape{
		name: "all", path: "simple/all", method: http.MethodPut, collection: true,
		allowed: []string{"limit", "skip", "collection"},
	}
	shapeByExample = shape{
		name: "by-example", path: "simple/by-example", method: http.MethodPut, collection: true,
		allowed: []string{"limit", "skip", "example", "collection"},
	}
	shapeNear = shape{
		name: "near", path: "simple/near", method: http.MethodPut, collection: true,
		allowed: []string{"latitude", "longitude", "distance", "skip", "limit", "geo", "collection"},
	}
	shapeWithin = shape{
		name: "within", path: "simple/within", method: http.MethodPut, collection: true,
		allowed: []string{"latitude", "longitude", "radius", "distance", "skip", "limit", "geo", "collection"},
	}
	shapeRange = shape{
		name: "range", path: "simple/range", method: http.MethodPut, collection: true,
		allowed: []string{"attribute", "left", "right", "closed", "limit", "skip", "collection"},
	}
	shapeFirstExample = shape{
		name: "first-example", path: "simple/first-example", method: http.MethodPut, collection: true,
		allowed: []string{"example", "collection"},
	}
	shapeCursor = shape{
		name: "cursor", path: "cursor", method: http.MethodPost,
		allowed: []string{"query", "count", "batchSize", "collection", "bindVars"},
	}
	shapeValidate = shape{
		name: "query", path: "query", method: http.MethodPost,
		allowed: []string{"query"},
	}
)

// Query builds and sends simple queries and AQL requests.
type Query struct {
	scope      Scope
	db         *Database
	collection *Collection
}

// Scope returns what the query is bound to.
func (q *Query) Scope() Scope { return q.scope }

// Collection returns the bound collection, nil for database scope.
func (q *Query) Collection() *Collection { return q.collection }

// All returns every document of the bound collection.
// Options: limit, skip.
func (q *Query) All(ctx context.Context, opts Options) (*Cursor, error) {
	return q.cursor(ctx, shapeAll, opts)
}

// ByExample returns the documents matching example.
// Options: limit, skip.
func (q *Query) ByExample(ctx context.Context, example map[string]interface{}, opts Options) (*Cursor, error) {
	return q.cursor(ctx, shapeByExample, withOption(opts, "example", example))
}

// Near returns documents ordered by distance from a point.
// Options: latitude, longitude, distance, skip, limit, geo.
func (q *Query) Near(ctx context.Context, opts Options) (*Cursor, error) {
	return q.cursor(ctx, shapeNear, opts)
}

// Within returns documents within radius of a point.
// Options: latitude, longitude, radius, distance, skip, limit, geo.
func (q *Query) Within(ctx context.Context, opts Options) (*Cursor, error) {
	return q.cursor(ctx, shapeWithin, opts)
}

// InRange returns documents whose attribute lies between left and right.
// Options: attribute, left, right, closed, limit, skip.
func (q *Query) InRange(ctx context.Context, opts Options) (*Cursor, error) {
	return q.cursor(ctx, shapeRange, opts)
}

// FirstExample returns the first document matching example.
func (q *Query) FirstExample(ctx context.Context, example map[string]interface{}) (*Document, error) {
	var resp struct {
		Document map[string]interface{} `json:"document"`
	}
	if err := q.send(ctx, shapeFirstExample, Options{"example": example}, &resp); err != nil {
		if e, ok := GetError(err); ok && e.Code == ErrCodeClient && e.HTTPStatus == http.StatusNotFound {
			return nil, NewDocumentNotFoundError(q.collection.Name())
		}
		return nil, err
	}
	if resp.Document == nil {
		return nil, NewDocumentNotFoundError(q.collection.Name())
	}
	return newDocument(q.db, resp.Document), nil
}

// Execute runs an AQL query.
// Options: count, batch_size, bind_vars.
func (q *Query) Execute(ctx context.Context, aql string, opts Options) (*Cursor, error) {
	if strings.TrimSpace(aql) == "" {
		return nil, NewValidationError("query is required", "")
	}
	return q.cursor(ctx, shapeCursor, withOption(opts, "query", aql))
}

// Valid asks the server to parse aql. A syntax error yields false with a nil
// error; any other failure is returned.
func (q *Query) Valid(ctx context.Context, aql string) (bool, error) {
	err := q.send(ctx, shapeValidate, Options{"query": aql}, nil)
	switch {
	case err == nil:
		return true, nil
	case IsBadSyntax(err):
		return false, nil
	default:
		return false, err
	}
}

func (q *Query) cursor(ctx context.Context, s shape, opts Options) (*Cursor, error) {
	var resp cursorResponse
	if err := q.send(ctx, s, opts, &resp); err != nil {
		return nil, err
	}
	return newCursor(q.db, &resp), nil
}

func (q *Query) send(ctx context.Context, s shape, opts Options, out interface{}) error {
	if s.collection {
		if q.scope != ScopeCollection || q.collection == nil {
			return ErrNoCollectionProvided
		}
		if err := q.collection.resolve(ctx); err != nil {
			return err
		}
	}

	body, dropped := buildBody(s, opts)
	if s.collection {
		body["collection"] = q.collection.Name()
	}
	if len(dropped) > 0 {
		q.db.conn.logger.Debug().
			Str("shape", s.name).
			Strs("dropped", dropped).
			Msg("ignoring unsupported query options")
	}

	return q.db.SendRequest(ctx, s.method, s.path, body, out)
}

// buildBody camel-cases option names and keeps the ones the shape accepts.
// It also returns the dropped option names, sorted. When two names map to
// the same field, the one already in camelCase wins; otherwise the first in
// sorted order does.
func buildBody(s shape, opts Options) (map[string]interface{}, []string) {
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)

	body := make(map[string]interface{}, len(opts)+1)
	exact := make(map[string]bool, len(opts))
	var dropped []string
	for _, name := range names {
		field := camelCase(name)
		if !contains(s.allowed, field) {
			dropped = append(dropped, name)
			continue
		}
		if _, seen := body[field]; seen && (exact[field] || name != field) {
			dropped = append(dropped, name)
			continue
		}
		body[field] = opts[name]
		exact[field] = name == field
	}
	sort.Strings(dropped)
	return body, dropped
}

func withOption(opts Options, name string, value interface{}) Options {
	out := make(Options, len(opts)+1)
	for k, v := range opts {
		out[k] = v
	}
	out[name] = value
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// camelCase turns "batch_size" into "batchSize". Names without underscores
// and names with a leading or trailing underscore are returned unchanged.
func camelCase(name string) string {
	if !strings.Contains(name, "_") || strings.HasPrefix(name, "_") || strings.HasSuffix(name, "_") {
		return name
	}
	parts := strings.Split(name, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
