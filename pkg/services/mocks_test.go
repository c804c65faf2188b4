package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sqlscribe/sqlscribe/pkg/adapters/datasource"
	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
	"github.com/sqlscribe/sqlscribe/pkg/models"
	"github.com/sqlscribe/sqlscribe/pkg/repositories"
	"github.com/sqlscribe/sqlscribe/pkg/vectorstore"
)

// mockAdapter implements datasource.Adapter with function fields.
type mockAdapter struct {
	GetTablesFunc  func(ctx context.Context) ([]datasource.TableInfo, error)
	GetColumnsFunc func(ctx context.Context, schema, table string) ([]datasource.ColumnInfo, error)
	ExecuteFunc    func(ctx context.Context, statement string) (*datasource.ExecuteResult, error)
}

var _ datasource.Adapter = (*mockAdapter)(nil)

func (m *mockAdapter) Ping(ctx context.Context) error { return nil }

func (m *mockAdapter) GetTables(ctx context.Context) ([]datasource.TableInfo, error) {
	if m.GetTablesFunc != nil {
		return m.GetTablesFunc(ctx)
	}
	return nil, nil
}

func (m *mockAdapter) GetColumns(ctx context.Context, schema, table string) ([]datasource.ColumnInfo, error) {
	if m.GetColumnsFunc != nil {
		return m.GetColumnsFunc(ctx, schema, table)
	}
	return nil, nil
}

func (m *mockAdapter) Execute(ctx context.Context, statement string) (*datasource.ExecuteResult, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, statement)
	}
	return &datasource.ExecuteResult{}, nil
}

func (m *mockAdapter) Close() error { return nil }

// fakeIndex is an in-memory vectorstore.Index with real cosine distances.
type fakeIndex struct {
	docs       map[string]vectorstore.Document
	upsertErr  error
	nearestErr error
}

var _ vectorstore.Index = (*fakeIndex)(nil)

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[string]vectorstore.Document)}
}

func (f *fakeIndex) EnsureCollection(ctx context.Context, name string, metadata map[string]any) (*vectorstore.Collection, error) {
	return &vectorstore.Collection{ID: "fake", Name: name}, nil
}

func (f *fakeIndex) Upsert(ctx context.Context, c *vectorstore.Collection, id string, embedding []float32, document string, metadata map[string]any) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.docs[id] = vectorstore.Document{
		ID:        id,
		Document:  document,
		Metadata:  metadata,
		Embedding: embedding,
	}
	return nil
}

func (f *fakeIndex) Get(ctx context.Context, c *vectorstore.Collection, id string) (*vectorstore.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %q", apperrors.ErrNotFound, id)
	}
	return &doc, nil
}

func (f *fakeIndex) Exists(ctx context.Context, c *vectorstore.Collection, id string) (bool, error) {
	_, ok := f.docs[id]
	return ok, nil
}

func (f *fakeIndex) Nearest(ctx context.Context, c *vectorstore.Collection, embedding []float32, k int) ([]vectorstore.Neighbor, error) {
	if f.nearestErr != nil {
		return nil, f.nearestErr
	}

	var neighbors []vectorstore.Neighbor
	for _, doc := range f.docs {
		neighbors = append(neighbors, vectorstore.Neighbor{
			Document: doc,
			Distance: cosineDistance(embedding, doc.Embedding),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].Distance < neighbors[j].Distance })
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// mockFeedbackRepo implements repositories.FeedbackRepository in memory.
type mockFeedbackRepo struct {
	records   map[string]models.FeedbackRecord
	insertErr error
	existsErr error
}

var _ repositories.FeedbackRepository = (*mockFeedbackRepo)(nil)

func newMockFeedbackRepo() *mockFeedbackRepo {
	return &mockFeedbackRepo{records: make(map[string]models.FeedbackRecord)}
}

func (m *mockFeedbackRepo) Insert(ctx context.Context, record *models.FeedbackRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.records[record.GenerationID] = *record
	return nil
}

func (m *mockFeedbackRepo) Exists(ctx context.Context, generationID string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.records[generationID]
	return ok, nil
}

func (m *mockFeedbackRepo) Stats(ctx context.Context) ([]models.FeedbackStat, error) {
	counts := make(map[models.FeedbackLabel]int)
	total := 0
	for _, r := range m.records {
		counts[r.Label]++
		total++
	}

	var stats []models.FeedbackStat
	for _, label := range []models.FeedbackLabel{models.LabelAccepted, models.LabelRejected} {
		if counts[label] == 0 {
			continue
		}
		stats = append(stats, models.FeedbackStat{
			Label:      label,
			Count:      counts[label],
			Percentage: 100 * float64(counts[label]) / float64(total),
		})
	}
	return stats, nil
}

func (m *mockFeedbackRepo) Recent(ctx context.Context, limit int) ([]models.FeedbackSummary, error) {
	var summaries []models.FeedbackSummary
	for _, r := range m.records {
		summaries = append(summaries, models.FeedbackSummary{
			GenerationID: r.GenerationID,
			Question:     r.Question,
			Label:        r.Label,
			CreatedAt:    r.CreatedAt,
		})
		if len(summaries) == limit {
			break
		}
	}
	return summaries, nil
}
