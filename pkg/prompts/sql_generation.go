// Package prompts assembles the text sent to the completion model. All
// functions here are pure; given the same inputs they produce byte-identical
// prompts.
package prompts

import "fmt"

// BuildSQLPrompt composes the generation prompt from the rendered schema,
// the user's question, and the target dialect ("PostgreSQL" or "SQL Server").
// The instructions pin the model to emit a single statement with no prose.
func BuildSQLPrompt(question, schemaText, dialect string) string {
	return fmt.Sprintf(`You are an expert SQL query generator. Given a database schema and a natural language question, generate ONLY the SQL query that answers the question. Target dialect: %s.

Database Schema:
%s

Natural Language Question: %s

Generate ONLY the SQL query, with no explanation, no markdown formatting, and no additional text.

SQL Query:`, dialect, schemaText, question)
}
