package models

import "time"

// FeedbackLabel is the human verdict on a generated SQL statement.
type FeedbackLabel string

const (
	LabelAccepted FeedbackLabel = "accepted"
	LabelRejected FeedbackLabel = "rejected"
)

// Valid reports whether the label is one of the known values.
func (l FeedbackLabel) Valid() bool {
	return l == LabelAccepted || l == LabelRejected
}

// FeedbackRecord is one human verdict on a generation, dual-written to the
// vector store (question embedded, record as metadata) and to the
// query_feedback table. GenerationID is unique across feedback in both.
type FeedbackRecord struct {
	GenerationID string        `json:"query_id"`
	Question     string        `json:"natural_language"`
	GeneratedSQL string        `json:"generated_sql"`
	Label        FeedbackLabel `json:"feedback"`
	CorrectedSQL *string       `json:"corrected_sql,omitempty"`
	Comments     *string       `json:"comments,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// FeedbackStat is an aggregate count for one label.
type FeedbackStat struct {
	Label      FeedbackLabel `json:"feedback"`
	Count      int           `json:"count"`
	Percentage float64       `json:"percentage"`
}

// SimilarQuery is one past-feedback hit from a similarity search. Similarity
// is 1 minus cosine distance, clamped to [0, 1].
type SimilarQuery struct {
	GenerationID string        `json:"query_id"`
	Question     string        `json:"natural_language"`
	GeneratedSQL string        `json:"generated_sql"`
	Label        FeedbackLabel `json:"feedback"`
	CorrectedSQL *string       `json:"corrected_sql,omitempty"`
	Similarity   float64       `json:"similarity_score"`
}

// FeedbackSummary is a compact listing row for recent feedback.
type FeedbackSummary struct {
	GenerationID string        `json:"query_id"`
	Question     string        `json:"natural_language"`
	Label        FeedbackLabel `json:"feedback"`
	CreatedAt    time.Time     `json:"created_at"`
}
