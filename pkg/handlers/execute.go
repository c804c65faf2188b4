package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/adapters/datasource"
	enginesql "github.com/sqlscribe/sqlscribe/pkg/sql"
)

// ExecuteRequest is the body of POST /api/execute-sql.
type ExecuteRequest struct {
	Query string `json:"query"`
}

// ExecuteResponse is the body returned by POST /api/execute-sql.
type ExecuteResponse struct {
	Success      bool             `json:"success"`
	Columns      []string         `json:"columns,omitempty"`
	Data         []map[string]any `json:"data,omitempty"`
	RowCount     int              `json:"row_count"`
	AffectedRows int64            `json:"affected_rows"`
	Message      string           `json:"message,omitempty"`
}

// ExecuteHandler runs generated SQL against the target datasource.
type ExecuteHandler struct {
	adapter datasource.Adapter
	logger  *zap.Logger
}

// NewExecuteHandler creates an ExecuteHandler.
func NewExecuteHandler(adapter datasource.Adapter, logger *zap.Logger) *ExecuteHandler {
	return &ExecuteHandler{adapter: adapter, logger: logger}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *ExecuteHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/execute-sql", h.Execute)
}

// Execute handles POST /api/execute-sql. The statement is normalized and
// screened before it runs; injection findings are logged but do not block,
// since the caller already reviewed the SQL.
func (h *ExecuteHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}

	validation := enginesql.ValidateAndNormalize(req.Query)
	if validation.Error != nil {
		if errors.Is(validation.Error, enginesql.ErrMultipleStatements) {
			_ = ErrorResponse(w, http.StatusBadRequest, "multiple_statements", validation.Error.Error())
			return
		}
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_sql", validation.Error.Error())
		return
	}

	for _, finding := range enginesql.ScreenLiterals(validation.NormalizedSQL) {
		h.logger.Warn("SQL literal matched an injection pattern",
			zap.String("fingerprint", finding.Fingerprint))
	}

	result, err := h.adapter.Execute(r.Context(), validation.NormalizedSQL)
	if err != nil {
		h.logger.Warn("Statement execution failed", zap.Error(err))
		_ = WriteJSON(w, http.StatusBadRequest, ExecuteResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	resp := ExecuteResponse{
		Success:      true,
		Columns:      result.Columns,
		Data:         result.Rows,
		RowCount:     result.RowCount,
		AffectedRows: result.RowsAffected,
	}
	if result.RowCount == 0 && result.RowsAffected > 0 {
		resp.Message = "statement executed"
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode execute response", zap.Error(err))
	}
}
