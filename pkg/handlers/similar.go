package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
	"github.com/sqlscribe/sqlscribe/pkg/services"
)

const defaultSimilarLimit = 5

// SimilarHandler serves similarity lookups over recorded feedback.
type SimilarHandler struct {
	similarity services.SimilarityService
	logger     *zap.Logger
}

// NewSimilarHandler creates a SimilarHandler.
func NewSimilarHandler(similarity services.SimilarityService, logger *zap.Logger) *SimilarHandler {
	return &SimilarHandler{similarity: similarity, logger: logger}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *SimilarHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/similar-queries/{id}", h.Similar)
}

// Similar handles GET /api/similar-queries/{id}?limit=n.
func (h *SimilarHandler) Similar(w http.ResponseWriter, r *http.Request) {
	queryID := r.PathValue("id")
	if queryID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "query id is required")
		return
	}

	limit := defaultSimilarLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	results, err := h.similarity.SimilarTo(r.Context(), queryID, limit)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			_ = ErrorResponse(w, http.StatusNotFound, "not_found", "no feedback recorded for this query id")
		default:
			h.logger.Error("Similarity search failed", zap.String("query_id", queryID), zap.Error(err))
			_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "similarity search failed")
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"query_id":        queryID,
		"similar_queries": results,
		"count":           len(results),
	}); err != nil {
		h.logger.Error("Failed to encode similarity response", zap.Error(err))
	}
}
