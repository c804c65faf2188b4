package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
	"github.com/sqlscribe/sqlscribe/pkg/llm"
	"github.com/sqlscribe/sqlscribe/pkg/models"
	"github.com/sqlscribe/sqlscribe/pkg/vectorstore"
)

func feedbackFixture() *models.FeedbackRecord {
	return &models.FeedbackRecord{
		GenerationID: "gen-1",
		Question:     "What is the most expensive product?",
		GeneratedSQL: "SELECT * FROM products ORDER BY price DESC LIMIT 1",
		Label:        models.LabelAccepted,
	}
}

func TestFeedback_RecordDualWrite(t *testing.T) {
	repo := newMockFeedbackRepo()
	index := newFakeIndex()
	embedder := &llm.MockEmbedder{
		EmbedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0, 0}, nil
		},
	}

	svc := NewFeedbackService(repo, embedder, index, &vectorstore.Collection{ID: "c1", Name: "db_schema"}, zap.NewNop())

	if err := svc.Record(context.Background(), feedbackFixture()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := repo.records["gen-1"]; !ok {
		t.Error("feedback row missing from repository")
	}

	doc, ok := index.docs["gen-1"]
	if !ok {
		t.Fatal("feedback document missing from vector store")
	}
	if doc.Document != "What is the most expensive product?" {
		t.Errorf("document text should be the question, got %q", doc.Document)
	}
	if doc.Metadata["feedback"] != "accepted" {
		t.Errorf("unexpected feedback metadata %v", doc.Metadata["feedback"])
	}
	if doc.Metadata["query_id"] != "gen-1" {
		t.Errorf("unexpected query_id metadata %v", doc.Metadata["query_id"])
	}
}

func TestFeedback_RecordDuplicateConflicts(t *testing.T) {
	repo := newMockFeedbackRepo()
	index := newFakeIndex()
	svc := NewFeedbackService(repo, &llm.MockEmbedder{}, index, &vectorstore.Collection{ID: "c1"}, zap.NewNop())

	if err := svc.Record(context.Background(), feedbackFixture()); err != nil {
		t.Fatalf("first record failed: %v", err)
	}

	err := svc.Record(context.Background(), feedbackFixture())
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestFeedback_RecordEmbeddingFailureWritesNothing(t *testing.T) {
	repo := newMockFeedbackRepo()
	index := newFakeIndex()
	embedder := &llm.MockEmbedder{
		EmbedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, apperrors.ErrEmbedding
		},
	}

	svc := NewFeedbackService(repo, embedder, index, &vectorstore.Collection{ID: "c1"}, zap.NewNop())

	err := svc.Record(context.Background(), feedbackFixture())
	if !errors.Is(err, apperrors.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Error("repository must stay empty when embedding fails")
	}
	if len(index.docs) != 0 {
		t.Error("vector store must stay empty when embedding fails")
	}
}

func TestFeedback_RecordInsertFailureIsPartial(t *testing.T) {
	repo := newMockFeedbackRepo()
	repo.insertErr = errors.New("disk full")
	index := newFakeIndex()

	svc := NewFeedbackService(repo, &llm.MockEmbedder{}, index, &vectorstore.Collection{ID: "c1"}, zap.NewNop())

	err := svc.Record(context.Background(), feedbackFixture())

	var partial *apperrors.PartialRecordError
	if !errors.As(err, &partial) {
		t.Fatalf("expected *PartialRecordError, got %v", err)
	}
	if partial.GenerationID != "gen-1" {
		t.Errorf("partial error should carry the generation id, got %q", partial.GenerationID)
	}
	if _, ok := index.docs["gen-1"]; !ok {
		t.Error("vector document should remain after partial failure")
	}
}

func TestFeedback_RecordRejectsUnknownLabel(t *testing.T) {
	svc := NewFeedbackService(newMockFeedbackRepo(), &llm.MockEmbedder{}, newFakeIndex(), &vectorstore.Collection{ID: "c1"}, zap.NewNop())

	record := feedbackFixture()
	record.Label = "thumbs_up"

	if err := svc.Record(context.Background(), record); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestFeedback_RecordRejectsReservedID(t *testing.T) {
	repo := newMockFeedbackRepo()
	index := newFakeIndex()
	svc := NewFeedbackService(repo, &llm.MockEmbedder{}, index, &vectorstore.Collection{ID: "c1"}, zap.NewNop())

	record := feedbackFixture()
	record.GenerationID = SchemaDocumentID

	if err := svc.Record(context.Background(), record); err == nil {
		t.Fatal("expected error for the reserved schema document id")
	}
	if len(index.docs) != 0 {
		t.Error("vector store must stay empty; the schema document must not be replaced")
	}
	if len(repo.records) != 0 {
		t.Error("repository must stay empty for the reserved id")
	}
}

func TestFeedback_RecordCorrectedSQLInMetadata(t *testing.T) {
	repo := newMockFeedbackRepo()
	index := newFakeIndex()
	svc := NewFeedbackService(repo, &llm.MockEmbedder{}, index, &vectorstore.Collection{ID: "c1"}, zap.NewNop())

	corrected := "SELECT name FROM products ORDER BY price DESC LIMIT 1"
	record := feedbackFixture()
	record.Label = models.LabelRejected
	record.CorrectedSQL = &corrected

	if err := svc.Record(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index.docs["gen-1"].Metadata["corrected_sql"] != corrected {
		t.Error("corrected_sql missing from vector metadata")
	}
}

func TestFeedback_Stats(t *testing.T) {
	repo := newMockFeedbackRepo()
	index := newFakeIndex()
	svc := NewFeedbackService(repo, &llm.MockEmbedder{}, index, &vectorstore.Collection{ID: "c1"}, zap.NewNop())

	accepted := feedbackFixture()
	if err := svc.Record(context.Background(), accepted); err != nil {
		t.Fatal(err)
	}

	rejected := feedbackFixture()
	rejected.GenerationID = "gen-2"
	rejected.Label = models.LabelRejected
	if err := svc.Record(context.Background(), rejected); err != nil {
		t.Fatal(err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 stat rows, got %d", len(stats))
	}
	for _, s := range stats {
		if s.Percentage != 50 {
			t.Errorf("expected 50%% for %s, got %v", s.Label, s.Percentage)
		}
	}
}
