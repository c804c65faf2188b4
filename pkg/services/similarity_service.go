package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
	"github.com/sqlscribe/sqlscribe/pkg/models"
	"github.com/sqlscribe/sqlscribe/pkg/vectorstore"
)

// SimilarityService finds past feedback whose questions resemble a given
// generation's question.
type SimilarityService interface {
	// SimilarTo returns up to limit feedback entries nearest to the question
	// of the given generation, excluding the generation itself and the schema
	// document. Returns apperrors.ErrNotFound when no feedback exists for the
	// id.
	SimilarTo(ctx context.Context, generationID string, limit int) ([]models.SimilarQuery, error)
}

type similarityService struct {
	index      vectorstore.Index
	collection *vectorstore.Collection
	logger     *zap.Logger
}

var _ SimilarityService = (*similarityService)(nil)

// NewSimilarityService creates a SimilarityService searching the given
// collection.
func NewSimilarityService(index vectorstore.Index, collection *vectorstore.Collection, logger *zap.Logger) SimilarityService {
	return &similarityService{
		index:      index,
		collection: collection,
		logger:     logger.Named("similarity"),
	}
}

func (s *similarityService) SimilarTo(ctx context.Context, generationID string, limit int) ([]models.SimilarQuery, error) {
	if limit <= 0 {
		limit = 5
	}

	doc, err := s.index.Get(ctx, s.collection, generationID)
	if err != nil {
		return nil, err
	}

	// Over-fetch to cover the source document itself and the schema document
	// sharing the collection.
	neighbors, err := s.index.Nearest(ctx, s.collection, doc.Embedding, limit+2)
	if err != nil {
		return nil, err
	}

	results := make([]models.SimilarQuery, 0, limit)
	for _, n := range neighbors {
		if n.ID == generationID || n.ID == SchemaDocumentID {
			continue
		}

		sq, err := similarQueryFromNeighbor(n)
		if err != nil {
			s.logger.Warn("Skipping neighbor with malformed metadata",
				zap.String("doc_id", n.ID), zap.Error(err))
			continue
		}

		results = append(results, sq)
		if len(results) == limit {
			break
		}
	}

	return results, nil
}

func similarQueryFromNeighbor(n vectorstore.Neighbor) (models.SimilarQuery, error) {
	queryID, ok := n.Metadata["query_id"].(string)
	if !ok || queryID == "" {
		return models.SimilarQuery{}, fmt.Errorf("%w: neighbor %q has no query_id", apperrors.ErrVectorStore, n.ID)
	}

	label, _ := n.Metadata["feedback"].(string)
	generatedSQL, _ := n.Metadata["generated_sql"].(string)

	sq := models.SimilarQuery{
		GenerationID: queryID,
		Question:     n.Document.Document,
		GeneratedSQL: generatedSQL,
		Label:        models.FeedbackLabel(label),
		Similarity:   similarityFromDistance(n.Distance),
	}
	if corrected, ok := n.Metadata["corrected_sql"].(string); ok {
		sq.CorrectedSQL = &corrected
	}
	return sq, nil
}

// similarityFromDistance converts cosine distance to a similarity score in
// [0, 1]. Distances above 1 (opposing vectors) clamp to 0.
func similarityFromDistance(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	if distance > 1 {
		distance = 1
	}
	return 1 - distance
}
