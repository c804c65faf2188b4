// Package apperrors defines the error taxonomy shared across the pipeline.
// Gateways wrap failures in the matching sentinel so handlers can map a
// failure to the dependency that caused it without string matching.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced id is absent from the vector store.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates feedback was already recorded for a generation id.
	ErrConflict = errors.New("conflict")

	// ErrSchemaUnavailable indicates the target store is unreachable or
	// introspection failed. Fatal to generation; partial schema is never used.
	ErrSchemaUnavailable = errors.New("schema unavailable")

	// ErrEmbedding indicates the embedding endpoint is unreachable or
	// returned a malformed response.
	ErrEmbedding = errors.New("embedding service failed")

	// ErrCompletion indicates the completion endpoint is unreachable or
	// returned a non-success response.
	ErrCompletion = errors.New("completion service failed")

	// ErrVectorStore indicates a vector store operation failed.
	ErrVectorStore = errors.New("vector store failed")
)

// PartialRecordError reports feedback that was written to the vector store
// but not mirrored into the structured feedback table. Distinct from total
// failure so monitoring can reconcile the divergence.
type PartialRecordError struct {
	GenerationID string
	Cause        error
}

func (e *PartialRecordError) Error() string {
	return fmt.Sprintf("feedback %s recorded in vector store but structured write failed: %v", e.GenerationID, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *PartialRecordError) Unwrap() error {
	return e.Cause
}
