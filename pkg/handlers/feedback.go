package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
	"github.com/sqlscribe/sqlscribe/pkg/models"
	"github.com/sqlscribe/sqlscribe/pkg/services"
)

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	QueryID         string  `json:"query_id"`
	NaturalLanguage string  `json:"natural_language"`
	GeneratedSQL    string  `json:"generated_sql"`
	Feedback        string  `json:"feedback"`
	CorrectedSQL    *string `json:"corrected_sql,omitempty"`
	Comments        *string `json:"comments,omitempty"`
}

// FeedbackHandler records verdicts on generated SQL and serves aggregates.
type FeedbackHandler struct {
	feedback services.FeedbackService
	logger   *zap.Logger
}

// NewFeedbackHandler creates a FeedbackHandler.
func NewFeedbackHandler(feedback services.FeedbackService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, logger: logger}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *FeedbackHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/feedback", h.Record)
	mux.HandleFunc("GET /api/feedback-stats", h.Stats)
}

// Record handles POST /api/feedback.
func (h *FeedbackHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	if strings.TrimSpace(req.QueryID) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "query_id is required")
		return
	}
	if req.QueryID == services.SchemaDocumentID {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "query_id is reserved")
		return
	}
	if strings.TrimSpace(req.NaturalLanguage) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "natural_language is required")
		return
	}
	if strings.TrimSpace(req.GeneratedSQL) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "generated_sql is required")
		return
	}

	label := models.FeedbackLabel(req.Feedback)
	if !label.Valid() {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "feedback must be 'accepted' or 'rejected'")
		return
	}

	record := &models.FeedbackRecord{
		GenerationID: req.QueryID,
		Question:     req.NaturalLanguage,
		GeneratedSQL: req.GeneratedSQL,
		Label:        label,
		CorrectedSQL: req.CorrectedSQL,
		Comments:     req.Comments,
	}

	if err := h.feedback.Record(r.Context(), record); err != nil {
		var partial *apperrors.PartialRecordError
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			_ = ErrorResponse(w, http.StatusConflict, "duplicate_feedback", "feedback already recorded for this query_id")
		case errors.As(err, &partial):
			h.logger.Error("Partial feedback record", zap.String("query_id", partial.GenerationID), zap.Error(err))
			_ = ErrorResponse(w, http.StatusInternalServerError, "partial_record", "feedback stored for retrieval but the audit row failed")
		case errors.Is(err, apperrors.ErrEmbedding):
			h.logger.Error("Feedback embedding failed", zap.Error(err))
			_ = ErrorResponse(w, http.StatusBadGateway, "embedding_failed", "could not embed the question; feedback not recorded")
		case errors.Is(err, apperrors.ErrVectorStore):
			h.logger.Error("Feedback vector write failed", zap.Error(err))
			_ = ErrorResponse(w, http.StatusInternalServerError, "storage_failed", "could not store feedback")
		default:
			h.logger.Error("Feedback failed", zap.Error(err))
			_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "could not record feedback")
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, map[string]string{
		"status":   "recorded",
		"query_id": req.QueryID,
	}); err != nil {
		h.logger.Error("Failed to encode feedback response", zap.Error(err))
	}
}

// Stats handles GET /api/feedback-stats.
func (h *FeedbackHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.feedback.Stats(r.Context())
	if err != nil {
		h.logger.Error("Feedback stats failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "could not load feedback stats")
		return
	}

	recent, err := h.feedback.Recent(r.Context(), 10)
	if err != nil {
		h.logger.Error("Recent feedback lookup failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "could not load feedback stats")
		return
	}

	total := 0
	for _, s := range stats {
		total += s.Count
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"total_feedback":  total,
		"stats":           stats,
		"recent_feedback": recent,
	}); err != nil {
		h.logger.Error("Failed to encode stats response", zap.Error(err))
	}
}
