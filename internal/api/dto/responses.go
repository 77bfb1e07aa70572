package dto

import (
	"encoding/json"
	"time"

	"github.com/unifiedui/arango-client/internal/services/export"
	"github.com/unifiedui/arango-client/pkg/arango"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
	ErrorNum int    `json:"errorNum,omitempty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

// CollectionResponse describes one collection.
type CollectionResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Type       string `json:"type"`
}

// NewCollectionResponse converts a collection.
func NewCollectionResponse(c *arango.Collection) *CollectionResponse {
	kind := "document"
	if c.Type() == arango.CollectionTypeEdge {
		kind = "edge"
	}
	return &CollectionResponse{
		ID:         c.ID(),
		Name:       c.Name(),
		Status:     c.Status().String(),
		StatusCode: int(c.Status()),
		Type:       kind,
	}
}

// ListCollectionsResponse is the reply of GET /collections.
type ListCollectionsResponse struct {
	Collections []*CollectionResponse `json:"collections"`
	Total       int                   `json:"total"`
}

// CountResponse is the reply of GET /collections/{name}/count.
type CountResponse struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// QueryResultResponse holds a fully drained cursor. ServerCount is set when
// the query asked the server to count.
type QueryResultResponse struct {
	Result      []json.RawMessage `json:"result"`
	Count       int               `json:"count"`
	ServerCount *int64            `json:"serverCount,omitempty"`
}

// ValidateQueryResponse is the reply of POST /query/validate.
type ValidateQueryResponse struct {
	Valid  bool `json:"valid"`
	Cached bool `json:"cached"`
}

// ExportResponse is the reply of POST /collections/{name}/export.
type ExportResponse struct {
	Collection string `json:"collection"`
	Target     string `json:"target"`
	Exported   int64  `json:"exported"`
	Cleared    int64  `json:"cleared"`
	DurationMs int64  `json:"durationMs"`
}

// NewExportResponse converts an export result.
func NewExportResponse(r *export.Result) *ExportResponse {
	return &ExportResponse{
		Collection: r.Collection,
		Target:     r.Target,
		Exported:   r.Exported,
		Cleared:    r.Cleared,
		DurationMs: r.Duration.Milliseconds(),
	}
}

// ExportJobResponse describes a queued export.
type ExportJobResponse struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	Collection string          `json:"collection"`
	Result     *ExportResponse `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
}

// NewExportJobResponse converts a job snapshot.
func NewExportJobResponse(job *export.Job) *ExportJobResponse {
	resp := &ExportJobResponse{
		ID:         job.ID,
		Status:     string(job.Status),
		Collection: job.Request.Collection,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.Result != nil {
		resp.Result = NewExportResponse(job.Result)
	}
	if job.Error != nil {
		resp.Error = job.Error.Error()
	}
	return resp
}
