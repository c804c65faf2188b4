package models

import "strings"

// SchemaColumn is a single column of a target-store table.
type SchemaColumn struct {
	Name     string `json:"name"`
	DataType string `json:"type"`
}

// SchemaTable is a target-store table with its columns in store-native order.
type SchemaTable struct {
	Name    string         `json:"table_name"`
	Columns []SchemaColumn `json:"columns"`
}

// SchemaDescription is the full schema of the target store, regenerated on
// demand. The relational store stays authoritative; only the rendered text
// is cached (as the schema document in the vector store).
type SchemaDescription struct {
	Tables []SchemaTable `json:"tables"`
}

// Render serializes the schema into the canonical text block used both for
// prompting and for embedding. Prompt assembly and schema embedding MUST go
// through this one function so the two views never diverge.
//
// Format, one table per block:
//
//	Table: products
//	  - id (INT)
//	  - price (DECIMAL)
func (d *SchemaDescription) Render() string {
	var b strings.Builder
	for _, table := range d.Tables {
		b.WriteString("Table: ")
		b.WriteString(table.Name)
		b.WriteString("\n")
		for _, col := range table.Columns {
			b.WriteString("  - ")
			b.WriteString(col.Name)
			b.WriteString(" (")
			b.WriteString(col.DataType)
			b.WriteString(")\n")
		}
	}
	return b.String()
}
