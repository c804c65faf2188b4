// Package repositories provides data access for the engine's own PostgreSQL
// tables.
package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sqlscribe/sqlscribe/pkg/models"
)

// FeedbackRepository manages rows in the query_feedback table. This table is
// the relational half of the feedback dual-write; the vector store holds the
// embedded copy.
type FeedbackRepository interface {
	Insert(ctx context.Context, record *models.FeedbackRecord) error
	Exists(ctx context.Context, generationID string) (bool, error)
	Stats(ctx context.Context) ([]models.FeedbackStat, error)
	Recent(ctx context.Context, limit int) ([]models.FeedbackSummary, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

var _ FeedbackRepository = (*feedbackRepository)(nil)

// NewFeedbackRepository creates a FeedbackRepository backed by the given pool.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Insert(ctx context.Context, record *models.FeedbackRecord) error {
	const query = `
		INSERT INTO query_feedback (generation_id, question, generated_sql, label, corrected_sql, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		record.GenerationID,
		record.Question,
		record.GeneratedSQL,
		string(record.Label),
		record.CorrectedSQL,
		record.Comments,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback for %s: %w", record.GenerationID, err)
	}
	return nil
}

func (r *feedbackRepository) Exists(ctx context.Context, generationID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM query_feedback WHERE generation_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, generationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check feedback for %s: %w", generationID, err)
	}
	return exists, nil
}

func (r *feedbackRepository) Stats(ctx context.Context) ([]models.FeedbackStat, error) {
	const query = `
		SELECT label, COUNT(*)
		FROM query_feedback
		GROUP BY label
		ORDER BY label
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query feedback stats: %w", err)
	}
	defer rows.Close()

	var stats []models.FeedbackStat
	total := 0
	for rows.Next() {
		var s models.FeedbackStat
		if err := rows.Scan(&s.Label, &s.Count); err != nil {
			return nil, fmt.Errorf("scan feedback stat: %w", err)
		}
		total += s.Count
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback stats: %w", err)
	}

	if total > 0 {
		for i := range stats {
			stats[i].Percentage = 100 * float64(stats[i].Count) / float64(total)
		}
	}
	return stats, nil
}

func (r *feedbackRepository) Recent(ctx context.Context, limit int) ([]models.FeedbackSummary, error) {
	const query = `
		SELECT generation_id, question, label, created_at
		FROM query_feedback
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent feedback: %w", err)
	}
	defer rows.Close()

	var summaries []models.FeedbackSummary
	for rows.Next() {
		var s models.FeedbackSummary
		if err := rows.Scan(&s.GenerationID, &s.Question, &s.Label, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent feedback: %w", err)
	}

	return summaries, nil
}
