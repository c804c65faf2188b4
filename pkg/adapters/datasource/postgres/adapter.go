// Package postgres implements the datasource adapter for PostgreSQL targets.
package postgres

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/adapters/datasource"
)

// Adapter runs schema discovery and statement execution against a PostgreSQL
// datasource over a pgx pool.
type Adapter struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ datasource.Adapter = (*Adapter)(nil)

// NewAdapter connects to the datasource described by cfg.
func NewAdapter(ctx context.Context, cfg datasource.Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	connStr := fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		url.QueryEscape(cfg.Database),
		cfg.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres datasource: %w", err)
	}

	return &Adapter{pool: pool, logger: logger}, nil
}

// Ping verifies the connection.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

// GetTables returns all user tables, excluding system schemas.
func (a *Adapter) GetTables(ctx context.Context) ([]datasource.TableInfo, error) {
	const query = `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY table_schema, table_name
	`

	rows, err := a.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []datasource.TableInfo
	for rows.Next() {
		var t datasource.TableInfo
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	return tables, nil
}

// GetColumns returns the columns of one table in ordinal position order.
func (a *Adapter) GetColumns(ctx context.Context, schema, table string) ([]datasource.ColumnInfo, error) {
	const query = `
		SELECT column_name, upper(data_type)
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := a.pool.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("query columns for %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var columns []datasource.ColumnInfo
	for rows.Next() {
		var c datasource.ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	return columns, nil
}

// Execute runs any SQL statement and returns rows or the affected-row count.
func (a *Adapter) Execute(ctx context.Context, statement string) (*datasource.ExecuteResult, error) {
	rows, err := a.pool.Query(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}
	defer rows.Close()

	result := &datasource.ExecuteResult{}

	fieldDescs := rows.FieldDescriptions()
	if len(fieldDescs) > 0 {
		result.Columns = make([]string, len(fieldDescs))
		for i, fd := range fieldDescs {
			result.Columns[i] = string(fd.Name)
		}

		result.Rows = make([]map[string]any, 0)
		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				return nil, fmt.Errorf("read row values: %w", err)
			}

			rowMap := make(map[string]any, len(result.Columns))
			for i, col := range result.Columns {
				rowMap[col] = values[i]
			}
			result.Rows = append(result.Rows, rowMap)
		}
		result.RowCount = len(result.Rows)
	} else {
		// pgx defers execution until rows are consumed; iterate even when no
		// rows are expected so the command tag and errors are populated.
		for rows.Next() {
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}

	result.RowsAffected = rows.CommandTag().RowsAffected()
	return result, nil
}

// Close releases the pool.
func (a *Adapter) Close() error {
	a.pool.Close()
	return nil
}
