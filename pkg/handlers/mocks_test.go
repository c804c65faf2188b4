package handlers

import (
	"context"

	"github.com/sqlscribe/sqlscribe/pkg/adapters/datasource"
	"github.com/sqlscribe/sqlscribe/pkg/models"
	"github.com/sqlscribe/sqlscribe/pkg/services"
)

type mockGenerationService struct {
	GenerateFunc func(ctx context.Context, question string) (*models.GenerationRecord, error)
}

var _ services.GenerationService = (*mockGenerationService)(nil)

func (m *mockGenerationService) Generate(ctx context.Context, question string) (*models.GenerationRecord, error) {
	return m.GenerateFunc(ctx, question)
}

type mockFeedbackService struct {
	RecordFunc func(ctx context.Context, record *models.FeedbackRecord) error
	StatsFunc  func(ctx context.Context) ([]models.FeedbackStat, error)
	RecentFunc func(ctx context.Context, limit int) ([]models.FeedbackSummary, error)
}

var _ services.FeedbackService = (*mockFeedbackService)(nil)

func (m *mockFeedbackService) Record(ctx context.Context, record *models.FeedbackRecord) error {
	return m.RecordFunc(ctx, record)
}

func (m *mockFeedbackService) Stats(ctx context.Context) ([]models.FeedbackStat, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return nil, nil
}

func (m *mockFeedbackService) Recent(ctx context.Context, limit int) ([]models.FeedbackSummary, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, limit)
	}
	return nil, nil
}

type mockSimilarityService struct {
	SimilarToFunc func(ctx context.Context, generationID string, limit int) ([]models.SimilarQuery, error)
}

var _ services.SimilarityService = (*mockSimilarityService)(nil)

func (m *mockSimilarityService) SimilarTo(ctx context.Context, generationID string, limit int) ([]models.SimilarQuery, error) {
	return m.SimilarToFunc(ctx, generationID, limit)
}

type mockSchemaService struct {
	DescribeFunc func(ctx context.Context) (*models.SchemaDescription, error)
}

var _ services.SchemaContextService = (*mockSchemaService)(nil)

func (m *mockSchemaService) Describe(ctx context.Context) (*models.SchemaDescription, error) {
	return m.DescribeFunc(ctx)
}

type mockExecAdapter struct {
	ExecuteFunc func(ctx context.Context, statement string) (*datasource.ExecuteResult, error)
}

var _ datasource.Adapter = (*mockExecAdapter)(nil)

func (m *mockExecAdapter) Ping(ctx context.Context) error { return nil }

func (m *mockExecAdapter) GetTables(ctx context.Context) ([]datasource.TableInfo, error) {
	return nil, nil
}

func (m *mockExecAdapter) GetColumns(ctx context.Context, schema, table string) ([]datasource.ColumnInfo, error) {
	return nil, nil
}

func (m *mockExecAdapter) Execute(ctx context.Context, statement string) (*datasource.ExecuteResult, error) {
	return m.ExecuteFunc(ctx, statement)
}

func (m *mockExecAdapter) Close() error { return nil }
