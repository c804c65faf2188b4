package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
	"github.com/sqlscribe/sqlscribe/pkg/services"
)

// GenerateRequest is the body of POST /api/generate-sql. Context is optional
// free-form text appended to the question before generation.
type GenerateRequest struct {
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}

// GenerateHandler serves SQL generation requests.
type GenerateHandler struct {
	generation services.GenerationService
	logger     *zap.Logger
}

// NewGenerateHandler creates a GenerateHandler.
func NewGenerateHandler(generation services.GenerationService, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{generation: generation, logger: logger}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate-sql", h.Generate)
}

// Generate handles POST /api/generate-sql.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	question := strings.TrimSpace(req.Text)
	if question == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}
	if extra := strings.TrimSpace(req.Context); extra != "" {
		question = question + "\n\nAdditional context: " + extra
	}

	record, err := h.generation.Generate(r.Context(), question)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSchemaUnavailable):
			h.logger.Error("Schema unavailable", zap.Error(err))
			_ = ErrorResponse(w, http.StatusServiceUnavailable, "schema_unavailable", "target database schema could not be read")
		case errors.Is(err, apperrors.ErrCompletion):
			h.logger.Error("Completion failed", zap.Error(err))
			_ = ErrorResponse(w, http.StatusBadGateway, "completion_failed", "language model did not return a usable query")
		default:
			h.logger.Error("Generation failed", zap.Error(err))
			_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to generate SQL")
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, record); err != nil {
		h.logger.Error("Failed to encode generation response", zap.Error(err))
	}
}
