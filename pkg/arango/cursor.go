package arango

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// cursorResponse is the reply shape of /cursor and the /simple endpoints.
type cursorResponse struct {
	Result  []json.RawMessage `json:"result"`
	HasMore bool              `json:"hasMore"`
	ID      flexString        `json:"id"`
	Count   *int64            `json:"count"`
}

// Cursor is a forward-only sequence over a paged query result. Follow-up
// batches are fetched on demand. A Cursor is not safe for concurrent use.
type Cursor struct {
	db      *Database
	id      string
	batch   []json.RawMessage
	pos     int
	hasMore bool
	count   *int64
	current json.RawMessage
	err     error
	closed  bool
}

func newCursor(db *Database, resp *cursorResponse) *Cursor {
	return &Cursor{
		db:      db,
		id:      string(resp.ID),
		batch:   resp.Result,
		hasMore: resp.HasMore,
		count:   resp.Count,
	}
}

// Next advances to the next item, fetching the next batch from the server
// when the current one is drained. It returns false at the end of the result
// or on error; check Err afterwards.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.closed || c.err != nil {
		return false
	}

	for c.pos >= len(c.batch) {
		if !c.hasMore {
			c.current = nil
			return false
		}
		if err := c.fetch(ctx); err != nil {
			c.err = err
			c.current = nil
			return false
		}
	}

	c.current = c.batch[c.pos]
	c.pos++
	return true
}

func (c *Cursor) fetch(ctx context.Context) error {
	if c.id == "" {
		return NewValidationError("cursor has more results but no id", "")
	}

	var resp cursorResponse
	if err := c.db.SendRequest(ctx, http.MethodPut, "cursor/"+c.id, nil, &resp); err != nil {
		return err
	}

	c.batch = resp.Result
	c.pos = 0
	c.hasMore = resp.HasMore
	if resp.Count != nil {
		c.count = resp.Count
	}
	if resp.ID != "" {
		c.id = string(resp.ID)
	}
	return nil
}

// Raw returns the current item as received.
func (c *Cursor) Raw() json.RawMessage {
	return c.current
}

// Decode decodes the current item into v.
func (c *Cursor) Decode(v interface{}) error {
	if c.current == nil {
		return NewValidationError("no current item", "call Next first")
	}
	if err := json.Unmarshal(c.current, v); err != nil {
		return fmt.Errorf("failed to decode cursor item: %w", err)
	}
	return nil
}

// Document returns the current item as a Document.
func (c *Cursor) Document() (*Document, error) {
	if c.current == nil {
		return nil, NewValidationError("no current item", "call Next first")
	}
	return decodeDocument(c.db, c.current)
}

// All drains the remaining items into Documents and closes the cursor.
func (c *Cursor) All(ctx context.Context) ([]*Document, error) {
	defer c.Close(ctx)

	docs := make([]*Document, 0, len(c.batch)-c.pos)
	for c.Next(ctx) {
		doc, err := c.Document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Err returns the error that stopped iteration, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Count returns the total result count when the query asked for it.
func (c *Cursor) Count() (int64, bool) {
	if c.count == nil {
		return 0, false
	}
	return *c.count, true
}

// ID returns the server-side cursor id; empty once the server has released it
// or when the result fit in one batch.
func (c *Cursor) ID() string {
	return c.id
}

// HasMore reports whether the server holds further batches.
func (c *Cursor) HasMore() bool {
	return c.hasMore
}

// Done reports whether iteration has finished.
func (c *Cursor) Done() bool {
	return c.closed || c.err != nil || (!c.hasMore && c.pos >= len(c.batch))
}

// Close stops iteration and releases the server-side cursor if it is still
// open. Calling Close more than once is a no-op.
func (c *Cursor) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.current = nil

	if !c.hasMore || c.id == "" {
		return nil
	}
	c.hasMore = false
	return c.db.SendRequest(ctx, http.MethodDelete, "cursor/"+c.id, nil, nil)
}
