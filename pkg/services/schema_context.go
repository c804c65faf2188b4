// Package services holds the business logic between the HTTP handlers and
// the adapters, repositories, and language model clients.
package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/adapters/datasource"
	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
	"github.com/sqlscribe/sqlscribe/pkg/models"
)

// SchemaContextService produces a fresh description of the target schema.
type SchemaContextService interface {
	// Describe reads the live schema from the datasource. The result is
	// whole-or-nothing; a failure on any table fails the call.
	Describe(ctx context.Context) (*models.SchemaDescription, error)
}

type schemaContextService struct {
	adapter datasource.Adapter
	logger  *zap.Logger
}

var _ SchemaContextService = (*schemaContextService)(nil)

// NewSchemaContextService creates a SchemaContextService over the given
// datasource adapter.
func NewSchemaContextService(adapter datasource.Adapter, logger *zap.Logger) SchemaContextService {
	return &schemaContextService{
		adapter: adapter,
		logger:  logger.Named("schema_context"),
	}
}

func (s *schemaContextService) Describe(ctx context.Context) (*models.SchemaDescription, error) {
	tables, err := s.adapter.GetTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list tables: %v", apperrors.ErrSchemaUnavailable, err)
	}

	desc := &models.SchemaDescription{Tables: make([]models.SchemaTable, 0, len(tables))}
	for _, table := range tables {
		columns, err := s.adapter.GetColumns(ctx, table.Schema, table.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: columns of %s.%s: %v", apperrors.ErrSchemaUnavailable, table.Schema, table.Name, err)
		}

		schemaTable := models.SchemaTable{
			Name:    table.Name,
			Columns: make([]models.SchemaColumn, 0, len(columns)),
		}
		for _, col := range columns {
			schemaTable.Columns = append(schemaTable.Columns, models.SchemaColumn{
				Name:     col.Name,
				DataType: col.DataType,
			})
		}
		desc.Tables = append(desc.Tables, schemaTable)
	}

	s.logger.Debug("Described target schema", zap.Int("tables", len(desc.Tables)))
	return desc, nil
}
