package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
	"github.com/sqlscribe/sqlscribe/pkg/llm"
	"github.com/sqlscribe/sqlscribe/pkg/models"
	"github.com/sqlscribe/sqlscribe/pkg/repositories"
	"github.com/sqlscribe/sqlscribe/pkg/vectorstore"
)

// FeedbackService records human verdicts on generated SQL. Each record is
// dual-written: the question is embedded into the vector store so future
// similarity searches can find it, and the full record lands in the
// query_feedback table.
type FeedbackService interface {
	Record(ctx context.Context, record *models.FeedbackRecord) error
	Stats(ctx context.Context) ([]models.FeedbackStat, error)
	Recent(ctx context.Context, limit int) ([]models.FeedbackSummary, error)
}

type feedbackService struct {
	repo       repositories.FeedbackRepository
	embedder   llm.Embedder
	index      vectorstore.Index
	collection *vectorstore.Collection
	logger     *zap.Logger
}

var _ FeedbackService = (*feedbackService)(nil)

// NewFeedbackService creates a FeedbackService writing to the given
// collection.
func NewFeedbackService(
	repo repositories.FeedbackRepository,
	embedder llm.Embedder,
	index vectorstore.Index,
	collection *vectorstore.Collection,
	logger *zap.Logger,
) FeedbackService {
	return &feedbackService{
		repo:       repo,
		embedder:   embedder,
		index:      index,
		collection: collection,
		logger:     logger.Named("feedback"),
	}
}

// Record persists one feedback record. The vector store write happens first;
// if it fails, nothing is persisted. If the relational insert then fails, a
// *apperrors.PartialRecordError reports the inconsistency.
func (s *feedbackService) Record(ctx context.Context, record *models.FeedbackRecord) error {
	if !record.Label.Valid() {
		return fmt.Errorf("invalid feedback label %q", record.Label)
	}
	if record.GenerationID == SchemaDocumentID {
		return fmt.Errorf("generation id %q is reserved for the schema document", SchemaDocumentID)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	exists, err := s.repo.Exists(ctx, record.GenerationID)
	if err != nil {
		return fmt.Errorf("check existing feedback: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: feedback already recorded for %s", apperrors.ErrConflict, record.GenerationID)
	}

	if record.Label == models.LabelRejected && record.CorrectedSQL == nil {
		s.logger.Warn("Rejection recorded without a corrected query",
			zap.String("generation_id", record.GenerationID))
	}

	embedding, err := s.embedder.Embed(ctx, record.Question)
	if err != nil {
		return err
	}

	metadata := map[string]any{
		"query_id":      record.GenerationID,
		"feedback":      string(record.Label),
		"generated_sql": record.GeneratedSQL,
		"timestamp":     record.CreatedAt.Format(time.RFC3339),
	}
	if record.CorrectedSQL != nil {
		metadata["corrected_sql"] = *record.CorrectedSQL
	}
	if record.Comments != nil {
		metadata["comments"] = *record.Comments
	}

	if err := s.index.Upsert(ctx, s.collection, record.GenerationID, embedding, record.Question, metadata); err != nil {
		return err
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		s.logger.Error("Feedback landed in the vector store but not the feedback table",
			zap.String("generation_id", record.GenerationID),
			zap.Error(err))
		return &apperrors.PartialRecordError{GenerationID: record.GenerationID, Cause: err}
	}

	s.logger.Info("Recorded feedback",
		zap.String("generation_id", record.GenerationID),
		zap.String("label", string(record.Label)))
	return nil
}

func (s *feedbackService) Stats(ctx context.Context) ([]models.FeedbackStat, error) {
	return s.repo.Stats(ctx)
}

func (s *feedbackService) Recent(ctx context.Context, limit int) ([]models.FeedbackSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Recent(ctx, limit)
}
