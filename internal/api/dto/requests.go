// Package dto provides Data Transfer Objects for gateway requests and responses.
package dto

// CreateCollectionRequest is the body of POST /collections.
type CreateCollectionRequest struct {
	Name string `json:"name" binding:"required,min=1,max=256"`
}

// SimpleQueryRequest is the body of POST /collections/{name}/simple/{shape}.
// Options use snake_case names such as batch_size; keys the shape does not
// accept are dropped.
type SimpleQueryRequest struct {
	Example map[string]interface{} `json:"example,omitempty"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// QueryRequest is the body of POST /query and POST /query/stream.
type QueryRequest struct {
	Query   string                 `json:"query" binding:"required"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// ValidateQueryRequest is the body of POST /query/validate.
type ValidateQueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// ExportRequest is the body of POST /collections/{name}/export.
type ExportRequest struct {
	Target  string                 `json:"target,omitempty"`
	Example map[string]interface{} `json:"example,omitempty"`
	Clear   bool                   `json:"clear"`
	// Async queues the export and answers 202 with a job.
	Async bool `json:"async"`
}
