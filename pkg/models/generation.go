package models

import "time"

// GenerationRecord is the result of one natural-language-to-SQL request.
// It lives only in the caller's session; nothing is persisted until
// feedback is submitted for its generation id.
type GenerationRecord struct {
	GenerationID  string    `json:"query_id"`
	Question      string    `json:"natural_language"`
	SchemaContext string    `json:"schema_context"`
	GeneratedSQL  string    `json:"generated_sql"`
	CreatedAt     time.Time `json:"created_at"`
}
