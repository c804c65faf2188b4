// Package vectorstore persists embeddings in PostgreSQL via pgvector.
// Documents live in named collections; nearest-neighbor search uses cosine
// distance over an HNSW index.
package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
)

// Collection is a named group of documents.
type Collection struct {
	ID   string
	Name string
}

// Document is one stored embedding with its source text and metadata.
type Document struct {
	ID        string
	Document  string
	Metadata  map[string]any
	Embedding []float32
}

// Neighbor is a search hit. Distance is the cosine distance to the query
// vector; 0 means identical direction, 2 means opposite.
type Neighbor struct {
	Document
	Distance float64
}

// Index is the vector store contract used by services. Implementations must
// make Upsert atomic per document id.
type Index interface {
	EnsureCollection(ctx context.Context, name string, metadata map[string]any) (*Collection, error)
	Upsert(ctx context.Context, c *Collection, id string, embedding []float32, document string, metadata map[string]any) error
	Get(ctx context.Context, c *Collection, id string) (*Document, error)
	Exists(ctx context.Context, c *Collection, id string) (bool, error)
	Nearest(ctx context.Context, c *Collection, embedding []float32, k int) ([]Neighbor, error)
}

// Store implements Index on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ Index = (*Store)(nil)

// NewStore wraps the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies the store's tables are reachable. An empty store is healthy.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM vector_collections LIMIT 1`).Scan(&one)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: ping: %v", apperrors.ErrVectorStore, err)
	}
	return nil
}

// EnsureCollection returns the collection with the given name, creating it if
// missing. Metadata is only written on creation.
func (s *Store) EnsureCollection(ctx context.Context, name string, metadata map[string]any) (*Collection, error) {
	metaJSON, err := marshalMetadata(metadata)
	if err != nil {
		return nil, err
	}

	const query = `
		INSERT INTO vector_collections (name, metadata)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	c := &Collection{Name: name}
	if err := s.pool.QueryRow(ctx, query, name, metaJSON).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("%w: ensure collection %q: %v", apperrors.ErrVectorStore, name, err)
	}
	return c, nil
}

// Upsert replaces the document with the given id. Delete and insert run in
// one transaction so readers never observe a missing document.
func (s *Store) Upsert(ctx context.Context, c *Collection, id string, embedding []float32, document string, metadata map[string]any) error {
	metaJSON, err := marshalMetadata(metadata)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin upsert: %v", apperrors.ErrVectorStore, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM vector_documents WHERE collection_id = $1 AND doc_id = $2`,
		c.ID, id); err != nil {
		return fmt.Errorf("%w: delete document %q: %v", apperrors.ErrVectorStore, id, err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO vector_documents (collection_id, doc_id, embedding, document, metadata)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, id, pgvector.NewVector(embedding), document, metaJSON); err != nil {
		return fmt.Errorf("%w: insert document %q: %v", apperrors.ErrVectorStore, id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit upsert: %v", apperrors.ErrVectorStore, err)
	}
	return nil
}

// Get returns the document with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, c *Collection, id string) (*Document, error) {
	const query = `
		SELECT doc_id, document, metadata, embedding
		FROM vector_documents
		WHERE collection_id = $1 AND doc_id = $2
	`

	var (
		doc      Document
		metaJSON []byte
		vec      pgvector.Vector
	)
	err := s.pool.QueryRow(ctx, query, c.ID, id).Scan(&doc.ID, &doc.Document, &metaJSON, &vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: document %q", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get document %q: %v", apperrors.ErrVectorStore, id, err)
	}

	if err := json.Unmarshal(metaJSON, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("%w: decode metadata for %q: %v", apperrors.ErrVectorStore, id, err)
	}
	doc.Embedding = vec.Slice()
	return &doc, nil
}

// Exists reports whether a document with the given id is present.
func (s *Store) Exists(ctx context.Context, c *Collection, id string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM vector_documents WHERE collection_id = $1 AND doc_id = $2
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, c.ID, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: check document %q: %v", apperrors.ErrVectorStore, id, err)
	}
	return exists, nil
}

// Nearest returns the k documents closest to the query vector by cosine
// distance, nearest first.
func (s *Store) Nearest(ctx context.Context, c *Collection, embedding []float32, k int) ([]Neighbor, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", apperrors.ErrVectorStore, k)
	}

	const query = `
		SELECT doc_id, document, metadata, embedding <=> $2 AS distance
		FROM vector_documents
		WHERE collection_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`

	rows, err := s.pool.Query(ctx, query, c.ID, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("%w: nearest query: %v", apperrors.ErrVectorStore, err)
	}
	defer rows.Close()

	var neighbors []Neighbor
	for rows.Next() {
		var (
			n        Neighbor
			metaJSON []byte
		)
		if err := rows.Scan(&n.ID, &n.Document.Document, &metaJSON, &n.Distance); err != nil {
			return nil, fmt.Errorf("%w: scan neighbor: %v", apperrors.ErrVectorStore, err)
		}
		if err := json.Unmarshal(metaJSON, &n.Metadata); err != nil {
			return nil, fmt.Errorf("%w: decode metadata for %q: %v", apperrors.ErrVectorStore, n.ID, err)
		}
		neighbors = append(neighbors, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate neighbors: %v", apperrors.ErrVectorStore, err)
	}

	return neighbors, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return []byte("{}"), nil
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal metadata: %v", apperrors.ErrVectorStore, err)
	}
	return metaJSON, nil
}
