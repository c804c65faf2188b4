// Package llm provides clients for text completion and embedding backends.
// Two providers are supported: Ollama's native HTTP API and any
// OpenAI-compatible endpoint.
package llm

import "context"

// CompletionClient generates SQL text from a fully assembled prompt.
// Implementations strip markdown code fences before returning, so callers
// always receive bare SQL.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModel() string
	GetEndpoint() string
}

// Embedder converts text into a fixed-dimension vector. The dimension is a
// property of the configured model and must match the vector store columns.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GetModel() string
}
