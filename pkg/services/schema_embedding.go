package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/llm"
	"github.com/sqlscribe/sqlscribe/pkg/vectorstore"
)

// SchemaDocumentID is the reserved document id for the embedded schema
// description. It shares the collection with feedback documents, so
// similarity searches must skip it.
const SchemaDocumentID = "db_schema"

// EmbeddingStatus describes the state of the schema document.
type EmbeddingStatus string

const (
	StatusPending  EmbeddingStatus = "pending"
	StatusReady    EmbeddingStatus = "ready"
	StatusDegraded EmbeddingStatus = "degraded"
)

// SchemaEmbeddingService maintains the embedded copy of the target schema in
// the vector store. Refresh runs at startup; a failure leaves the service
// degraded but does not stop the engine, since generation reads the schema
// live.
type SchemaEmbeddingService struct {
	schema     SchemaContextService
	embedder   llm.Embedder
	index      vectorstore.Index
	collection *vectorstore.Collection
	logger     *zap.Logger

	mu        sync.RWMutex
	status    EmbeddingStatus
	lastError error
	updatedAt time.Time
}

// NewSchemaEmbeddingService creates the service in the pending state.
func NewSchemaEmbeddingService(
	schema SchemaContextService,
	embedder llm.Embedder,
	index vectorstore.Index,
	collection *vectorstore.Collection,
	logger *zap.Logger,
) *SchemaEmbeddingService {
	return &SchemaEmbeddingService{
		schema:     schema,
		embedder:   embedder,
		index:      index,
		collection: collection,
		logger:     logger.Named("schema_embedding"),
		status:     StatusPending,
	}
}

// Refresh reads the live schema, embeds its rendered text, and upserts the
// schema document. On failure the previous document (if any) stays in place.
func (s *SchemaEmbeddingService) Refresh(ctx context.Context) error {
	desc, err := s.schema.Describe(ctx)
	if err != nil {
		s.setStatus(StatusDegraded, err)
		return err
	}

	schemaText := desc.Render()
	embedding, err := s.embedder.Embed(ctx, schemaText)
	if err != nil {
		s.setStatus(StatusDegraded, err)
		return err
	}

	metadata := map[string]any{
		"type":      "schema",
		"tables":    len(desc.Tables),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.index.Upsert(ctx, s.collection, SchemaDocumentID, embedding, schemaText, metadata); err != nil {
		s.setStatus(StatusDegraded, err)
		return err
	}

	s.setStatus(StatusReady, nil)
	s.logger.Info("Embedded target schema", zap.Int("tables", len(desc.Tables)))
	return nil
}

// Status returns the current embedding state and the last error, if any.
func (s *SchemaEmbeddingService) Status() (EmbeddingStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.lastError
}

func (s *SchemaEmbeddingService) setStatus(status EmbeddingStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.lastError = err
	s.updatedAt = time.Now().UTC()
}
