package postgres

import (
	"context"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/adapters/datasource"
)

func init() {
	datasource.Register("postgres", func(ctx context.Context, cfg datasource.Config, logger *zap.Logger) (datasource.Adapter, error) {
		return NewAdapter(ctx, cfg, logger)
	})
}
