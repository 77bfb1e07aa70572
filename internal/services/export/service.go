// Package export copies the documents of an ArangoDB collection into a
// document database collection.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/unifiedui/arango-client/internal/core/docdb"
	"github.com/unifiedui/arango-client/pkg/arango"
)

const (
	// DefaultChunkSize is the number of documents per InsertMany call.
	DefaultChunkSize = 500
	// DefaultBatchSize is the cursor batch size requested from ArangoDB.
	DefaultBatchSize = 1000

	exportQuery = "FOR d IN @@collection RETURN d"
)

// Request describes one export.
type Request struct {
	// Collection is the ArangoDB collection to read.
	Collection string
	// Target is the sink collection; defaults to Collection.
	Target string
	// Example restricts the export to documents matching it.
	Example map[string]interface{}
	// Clear empties the target before writing.
	Clear bool
}

// Result summarizes a finished export.
type Result struct {
	Collection string        `json:"collection"`
	Target     string        `json:"target"`
	Exported   int64         `json:"exported"`
	Cleared    int64         `json:"cleared"`
	Duration   time.Duration `json:"duration"`
}

// Service runs exports.
type Service interface {
	Export(ctx context.Context, req *Request) (*Result, error)
}

// Config holds the configuration for the export service.
type Config struct {
	Database  *arango.Database
	Sink      docdb.Client
	ChunkSize int
	BatchSize int
	Logger    *zerolog.Logger
}

type service struct {
	db        *arango.Database
	sink      docdb.Client
	chunkSize int
	batchSize int
	logger    zerolog.Logger
}

// NewService creates a new export service.
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database is required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &service{
		db:        cfg.Database,
		sink:      cfg.Sink,
		chunkSize: chunkSize,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

func (s *service) Export(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || req.Collection == "" {
		return nil, arango.NewValidationError("collection is required", "")
	}

	start := time.Now()
	result := &Result{Collection: req.Collection, Target: req.Target}
	if result.Target == "" {
		result.Target = req.Collection
	}

	collection, err := s.db.Collection(ctx, req.Collection)
	if err != nil {
		return nil, err
	}

	cursor, err := s.open(ctx, collection, req.Example)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			s.logger.Warn().Err(err).Str("collection", req.Collection).Msg("failed to close export cursor")
		}
	}()

	target := s.sink.Collection(result.Target)
	if req.Clear {
		result.Cleared, err = target.DeleteMany(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to clear target %s: %w", result.Target, err)
		}
	}

	chunk := make([]interface{}, 0, s.chunkSize)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if _, err := target.InsertMany(ctx, chunk); err != nil {
			return fmt.Errorf("failed to write chunk to %s: %w", result.Target, err)
		}
		result.Exported += int64(len(chunk))
		chunk = make([]interface{}, 0, s.chunkSize)
		return nil
	}

	for cursor.Next(ctx) {
		doc, err := cursor.Document()
		if err != nil {
			return nil, err
		}
		chunk = append(chunk, sinkDocument(doc))
		if len(chunk) == s.chunkSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	s.logger.Info().
		Str("collection", result.Collection).
		Str("target", result.Target).
		Int64("exported", result.Exported).
		Dur("duration", result.Duration).
		Msg("export completed")

	return result, nil
}

func (s *service) open(ctx context.Context, collection *arango.Collection, example map[string]interface{}) (*arango.Cursor, error) {
	if len(example) > 0 {
		return collection.Query().ByExample(ctx, example, nil)
	}
	return collection.Query().Execute(ctx, exportQuery, arango.Options{
		"batch_size": s.batchSize,
		"bind_vars":  map[string]interface{}{"@collection": collection.Name()},
	})
}

// sinkDocument keys the exported record by its ArangoDB key.
func sinkDocument(doc *arango.Document) map[string]interface{} {
	out := doc.Fields()
	out["_id"] = doc.Key()
	if rev := doc.Revision(); rev != "" {
		out["_rev"] = rev
	}
	return out
}
