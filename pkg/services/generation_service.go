package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/llm"
	"github.com/sqlscribe/sqlscribe/pkg/models"
	"github.com/sqlscribe/sqlscribe/pkg/prompts"
)

// GenerationService turns natural language questions into SQL.
type GenerationService interface {
	// Generate reads the live schema, prompts the completion model, and
	// returns the result under a fresh generation id. Nothing is persisted;
	// persistence happens only when feedback is submitted for the id.
	Generate(ctx context.Context, question string) (*models.GenerationRecord, error)
}

type generationService struct {
	schema  SchemaContextService
	client  llm.CompletionClient
	dialect string
	logger  *zap.Logger
}

var _ GenerationService = (*generationService)(nil)

// NewGenerationService creates a GenerationService. dialect names the target
// SQL dialect in the prompt ("PostgreSQL" or "SQL Server").
func NewGenerationService(schema SchemaContextService, client llm.CompletionClient, dialect string, logger *zap.Logger) GenerationService {
	return &generationService{
		schema:  schema,
		client:  client,
		dialect: dialect,
		logger:  logger.Named("generation"),
	}
}

func (s *generationService) Generate(ctx context.Context, question string) (*models.GenerationRecord, error) {
	desc, err := s.schema.Describe(ctx)
	if err != nil {
		return nil, err
	}

	schemaText := desc.Render()
	prompt := prompts.BuildSQLPrompt(question, schemaText, s.dialect)

	start := time.Now()
	generatedSQL, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	record := &models.GenerationRecord{
		GenerationID:  uuid.New().String(),
		Question:      question,
		SchemaContext: schemaText,
		GeneratedSQL:  generatedSQL,
		CreatedAt:     time.Now().UTC(),
	}

	s.logger.Info("Generated SQL",
		zap.String("generation_id", record.GenerationID),
		zap.String("model", s.client.GetModel()),
		zap.Duration("duration", time.Since(start)))

	return record, nil
}
