package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
	"github.com/sqlscribe/sqlscribe/pkg/services"
)

// SchemaHandler exposes the live target schema.
type SchemaHandler struct {
	schema services.SchemaContextService
	logger *zap.Logger
}

// NewSchemaHandler creates a SchemaHandler.
func NewSchemaHandler(schema services.SchemaContextService, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{schema: schema, logger: logger}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *SchemaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/schema", h.Schema)
}

// Schema handles GET /api/schema. The response is read live from the
// datasource on every call.
func (h *SchemaHandler) Schema(w http.ResponseWriter, r *http.Request) {
	desc, err := h.schema.Describe(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrSchemaUnavailable) {
			h.logger.Error("Schema unavailable", zap.Error(err))
			_ = ErrorResponse(w, http.StatusServiceUnavailable, "schema_unavailable", "target database schema could not be read")
			return
		}
		h.logger.Error("Schema read failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to read schema")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"tables":      desc.Tables,
		"table_count": len(desc.Tables),
	}); err != nil {
		h.logger.Error("Failed to encode schema response", zap.Error(err))
	}
}
