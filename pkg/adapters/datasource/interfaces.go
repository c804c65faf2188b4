// Package datasource defines the adapter contract for the target relational
// store (the database that questions are answered against). Driver packages
// register themselves via Register; the engine's own PostgreSQL instance is
// managed separately in pkg/database.
package datasource

import "context"

// Config holds the connection settings for a target datasource.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// TableInfo identifies one user table.
type TableInfo struct {
	Schema string
	Name   string
}

// ColumnInfo is one column of a table. DataType is the store's native type
// name, upper-cased.
type ColumnInfo struct {
	Name     string
	DataType string
}

// ExecuteResult holds the outcome of running a SQL statement. Statements that
// return rows populate Columns, Rows, and RowCount; DML without a result set
// populates RowsAffected.
type ExecuteResult struct {
	Columns      []string         `json:"columns,omitempty"`
	Rows         []map[string]any `json:"rows,omitempty"`
	RowCount     int              `json:"row_count"`
	RowsAffected int64            `json:"affected_rows"`
}

// Adapter is a live connection to a target datasource.
type Adapter interface {
	// Ping verifies the connection is usable.
	Ping(ctx context.Context) error

	// GetTables returns all user tables, ordered by schema then table name.
	GetTables(ctx context.Context) ([]TableInfo, error)

	// GetColumns returns the columns of one table in ordinal position order.
	GetColumns(ctx context.Context, schema, table string) ([]ColumnInfo, error)

	// Execute runs an arbitrary SQL statement against the datasource.
	Execute(ctx context.Context, statement string) (*ExecuteResult, error)

	Close() error
}
