package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/config"
	"github.com/sqlscribe/sqlscribe/pkg/llm"
	"github.com/sqlscribe/sqlscribe/pkg/services"
)

// Pinger is anything with a context-aware liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
}

// HealthHandler serves liveness and dependency health endpoints.
type HealthHandler struct {
	cfg             *config.Config
	engineDB        Pinger
	target          Pinger
	vectorStore     Pinger
	completion      llm.CompletionClient
	schemaEmbedding *services.SchemaEmbeddingService
	logger          *zap.Logger
}

// NewHealthHandler creates a HealthHandler. Dependencies may be nil in tests;
// nil dependencies report as "unknown".
func NewHealthHandler(cfg *config.Config, engineDB, target, vectorStore Pinger, completion llm.CompletionClient, schemaEmbedding *services.SchemaEmbeddingService, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		cfg:             cfg,
		engineDB:        engineDB,
		target:          target,
		vectorStore:     vectorStore,
		completion:      completion,
		schemaEmbedding: schemaEmbedding,
		logger:          logger,
	}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health. Reports per-dependency status; overall status
// is "ok" only when every dependency is healthy and the schema embedding is
// not degraded.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deps := map[string]string{
		"database":     pingStatus(ctx, h.engineDB),
		"datasource":   pingStatus(ctx, h.target),
		"vector_store": pingStatus(ctx, h.vectorStore),
		"llm_endpoint": h.llmStatus(ctx),
	}

	overall := "ok"
	for _, status := range deps {
		if status == "error" {
			overall = "degraded"
		}
	}

	if h.schemaEmbedding != nil {
		status, lastErr := h.schemaEmbedding.Status()
		deps["schema_embedding"] = string(status)
		if status == services.StatusDegraded {
			overall = "degraded"
			if lastErr != nil {
				h.logger.Debug("Schema embedding degraded", zap.Error(lastErr))
			}
		}
	}

	code := http.StatusOK
	if overall != "ok" {
		code = http.StatusServiceUnavailable
	}

	if err := WriteJSON(w, code, map[string]any{
		"status":       overall,
		"dependencies": deps,
	}); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "unknown"
	}
	if err := p.Ping(ctx); err != nil {
		return "error"
	}
	return "ok"
}

// llmStatus checks that the completion endpoint is reachable. Any HTTP
// response counts; model availability is only known at generation time.
func (h *HealthHandler) llmStatus(ctx context.Context) string {
	if h.completion == nil {
		return "unknown"
	}
	endpoint := h.completion.GetEndpoint()
	if endpoint == "" {
		return "unknown"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "error"
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "error"
	}
	_ = resp.Body.Close()
	return "ok"
}

// Ping handles GET /ping.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "sqlscribe",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
