// Package mssql implements the datasource adapter for SQL Server targets.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/adapters/datasource"
)

// Adapter runs schema discovery and statement execution against a SQL Server
// datasource through database/sql.
type Adapter struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ datasource.Adapter = (*Adapter)(nil)

// NewAdapter connects to the datasource described by cfg.
func NewAdapter(ctx context.Context, cfg datasource.Config, logger *zap.Logger) (*Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	query := url.Values{}
	query.Set("database", cfg.Database)
	if cfg.SSLMode == "disable" {
		query.Set("encrypt", "disable")
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: query.Encode(),
	}

	db, err := sql.Open("sqlserver", u.String())
	if err != nil {
		return nil, fmt.Errorf("open sqlserver datasource: %w", err)
	}

	return &Adapter{db: db, logger: logger}, nil
}

// Ping verifies the connection.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// GetTables returns all user tables.
func (a *Adapter) GetTables(ctx context.Context) ([]datasource.TableInfo, error) {
	const query = `
		SELECT s.name, t.name
		FROM sys.tables t
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		WHERE t.is_ms_shipped = 0
		ORDER BY s.name, t.name
	`

	rows, err := a.db.QueryContext(ctx, query)
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

// GetColumns returns the columns of one table in column_id order.
func (a *Adapter) GetColumns(ctx context.Context, schema, table string) ([]datasource.ColumnInfo, error) {
	const query = `
		SELECT c.name, UPPER(ty.name)
		FROM sys.columns c
		JOIN sys.types ty ON ty.user_type_id = c.user_type_id
		JOIN sys.tables t ON t.object_id = c.object_id
		JOIN sys.schemas s ON s.schema_id = t.schema_id
		WHERE s.name = @p1 AND t.name = @p2
		ORDER BY c.column_id
	`

	rows, err := a.db.QueryContext(ctx, query,
		sql.Named("p1", schema), sql.Named("p2", table))
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

// Execute runs any SQL statement. Statements that return rows (SELECT, DML
// with OUTPUT) produce a row set; other DML falls back to ExecContext for the
// affected-row count.
func (a *Adapter) Execute(ctx context.Context, statement string) (*datasource.ExecuteResult, error) {
	rows, err := a.db.QueryContext(ctx, statement)
	if err != nil {
		return a.executeWithoutRows(ctx, statement)
	}
	defer rows.Close()

	columnTypes, err := rows.ColumnTypes()
	if err != nil || len(columnTypes) == 0 {
		rows.Close()
		return a.executeWithoutRows(ctx, statement)
	}

	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	result := &datasource.ExecuteResult{
		Columns: columnNames,
		Rows:    make([]map[string]any, 0),
	}

	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		rowMap := make(map[string]any, len(columnNames))
		for i, col := range columnNames {
			val := values[i]
			if b, ok := val.([]byte); ok && isStringType(columnTypes[i].DatabaseTypeName()) {
				val = string(b)
			}
			rowMap[col] = val
		}
		result.Rows = append(result.Rows, rowMap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	return result, nil
}

func (a *Adapter) executeWithoutRows(ctx context.Context, statement string) (*datasource.ExecuteResult, error) {
	execResult, err := a.db.ExecContext(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("execute statement: %w", err)
	}

	rowsAffected, err := execResult.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}

	return &datasource.ExecuteResult{RowsAffected: rowsAffected}, nil
}

// Close releases the connection pool.
func (a *Adapter) Close() error {
	return a.db.Close()
}

func isStringType(dbType string) bool {
	switch strings.ToUpper(dbType) {
	case "CHAR", "VARCHAR", "NCHAR", "NVARCHAR", "TEXT", "NTEXT":
		return true
	default:
		return false
	}
}
