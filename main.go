package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/adapters/datasource"
	_ "github.com/sqlscribe/sqlscribe/pkg/adapters/datasource/mssql"
	_ "github.com/sqlscribe/sqlscribe/pkg/adapters/datasource/postgres"
	"github.com/sqlscribe/sqlscribe/pkg/config"
	"github.com/sqlscribe/sqlscribe/pkg/database"
	"github.com/sqlscribe/sqlscribe/pkg/handlers"
	"github.com/sqlscribe/sqlscribe/pkg/llm"
	"github.com/sqlscribe/sqlscribe/pkg/middleware"
	"github.com/sqlscribe/sqlscribe/pkg/repositories"
	"github.com/sqlscribe/sqlscribe/pkg/services"
	"github.com/sqlscribe/sqlscribe/pkg/vectorstore"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	// Engine database (feedback rows + vector store).
	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to engine database", zap.Error(err))
	}
	defer db.Close()

	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	// Target datasource.
	adapter, err := datasource.New(ctx, cfg.Datasource.Driver, datasource.Config{
		Host:     cfg.Datasource.Host,
		Port:     cfg.Datasource.Port,
		User:     cfg.Datasource.User,
		Password: cfg.Datasource.Password,
		Database: cfg.Datasource.Database,
		SSLMode:  cfg.Datasource.SSLMode,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to target datasource", zap.Error(err))
	}
	defer func() { _ = adapter.Close() }()

	// Language model clients.
	completionClient, err := llm.NewCompletionClient(cfg.LLM)
	if err != nil {
		logger.Fatal("Failed to build completion client", zap.Error(err))
	}
	embedder, err := llm.NewEmbedder(cfg.Embedding)
	if err != nil {
		logger.Fatal("Failed to build embedder", zap.Error(err))
	}

	// Vector store.
	index := vectorstore.NewStore(db.Pool)
	collection, err := index.EnsureCollection(ctx, cfg.Vector.Collection, map[string]any{
		"embedding_model": embedder.GetModel(),
		"dimensions":      cfg.Embedding.Dimensions,
	})
	if err != nil {
		logger.Fatal("Failed to ensure vector collection", zap.Error(err))
	}

	// Services.
	feedbackRepo := repositories.NewFeedbackRepository(db.Pool)
	schemaService := services.NewSchemaContextService(adapter, logger)
	generationService := services.NewGenerationService(schemaService, completionClient, cfg.Datasource.Dialect(), logger)
	feedbackService := services.NewFeedbackService(feedbackRepo, embedder, index, collection, logger)
	similarityService := services.NewSimilarityService(index, collection, logger)
	schemaEmbedding := services.NewSchemaEmbeddingService(schemaService, embedder, index, collection, logger)

	// Startup schema embedding. Failure degrades health but does not stop
	// the engine; generation reads the schema live.
	embedCtx, cancel := context.WithTimeout(ctx, cfg.Embedding.Timeout()+30*time.Second)
	if err := schemaEmbedding.Refresh(embedCtx); err != nil {
		logger.Warn("Schema embedding failed at startup; continuing degraded", zap.Error(err))
	}
	cancel()

	// HTTP surface.
	mux := http.NewServeMux()
	handlers.NewGenerateHandler(generationService, logger).RegisterRoutes(mux)
	handlers.NewExecuteHandler(adapter, logger).RegisterRoutes(mux)
	handlers.NewFeedbackHandler(feedbackService, logger).RegisterRoutes(mux)
	handlers.NewSimilarHandler(similarityService, logger).RegisterRoutes(mux)
	handlers.NewSchemaHandler(schemaService, logger).RegisterRoutes(mux)
	handlers.NewHealthHandler(cfg, db.Pool, adapter, index, completionClient, schemaEmbedding, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.RequestLogger(logger)(middleware.Metrics(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting sqlscribe",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("datasource_driver", cfg.Datasource.Driver),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", completionClient.GetModel()))

	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
