package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sqlscribe/sqlscribe/pkg/adapters/datasource"
	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
)

func TestSchemaContext_Describe(t *testing.T) {
	adapter := &mockAdapter{
		GetTablesFunc: func(ctx context.Context) ([]datasource.TableInfo, error) {
			return []datasource.TableInfo{
				{Schema: "public", Name: "products"},
				{Schema: "public", Name: "users"},
			}, nil
		},
		GetColumnsFunc: func(ctx context.Context, schema, table string) ([]datasource.ColumnInfo, error) {
			if table == "products" {
				return []datasource.ColumnInfo{
					{Name: "id", DataType: "INTEGER"},
					{Name: "price", DataType: "NUMERIC"},
				}, nil
			}
			return []datasource.ColumnInfo{{Name: "email", DataType: "TEXT"}}, nil
		},
	}

	svc := NewSchemaContextService(adapter, zap.NewNop())
	desc, err := svc.Describe(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(desc.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(desc.Tables))
	}
	if desc.Tables[0].Name != "products" || len(desc.Tables[0].Columns) != 2 {
		t.Errorf("unexpected first table: %+v", desc.Tables[0])
	}

	want := "Table: products\n" +
		"  - id (INTEGER)\n" +
		"  - price (NUMERIC)\n" +
		"Table: users\n" +
		"  - email (TEXT)\n"
	if got := desc.Render(); got != want {
		t.Errorf("rendered schema mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestSchemaContext_DescribeTableListFails(t *testing.T) {
	adapter := &mockAdapter{
		GetTablesFunc: func(ctx context.Context) ([]datasource.TableInfo, error) {
			return nil, errors.New("connection refused")
		},
	}

	svc := NewSchemaContextService(adapter, zap.NewNop())
	_, err := svc.Describe(context.Background())
	if !errors.Is(err, apperrors.ErrSchemaUnavailable) {
		t.Errorf("expected ErrSchemaUnavailable, got %v", err)
	}
}

func TestSchemaContext_DescribeColumnFailureFailsWhole(t *testing.T) {
	adapter := &mockAdapter{
		GetTablesFunc: func(ctx context.Context) ([]datasource.TableInfo, error) {
			return []datasource.TableInfo{
				{Schema: "public", Name: "good"},
				{Schema: "public", Name: "bad"},
			}, nil
		},
		GetColumnsFunc: func(ctx context.Context, schema, table string) ([]datasource.ColumnInfo, error) {
			if table == "bad" {
				return nil, errors.New("permission denied")
			}
			return []datasource.ColumnInfo{{Name: "id", DataType: "INTEGER"}}, nil
		},
	}

	svc := NewSchemaContextService(adapter, zap.NewNop())
	_, err := svc.Describe(context.Background())
	if !errors.Is(err, apperrors.ErrSchemaUnavailable) {
		t.Errorf("expected ErrSchemaUnavailable when any table fails, got %v", err)
	}
}
