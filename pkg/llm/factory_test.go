package llm

import (
	"testing"

	"github.com/sqlscribe/sqlscribe/pkg/config"
)

func TestNewCompletionClient(t *testing.T) {
	ollamaCfg := config.LLMConfig{
		Provider: "ollama",
		BaseURL:  "http://localhost:11434",
		Model:    "llama3.2:3b-instruct-q4_0",
	}
	client, err := NewCompletionClient(ollamaCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := client.(*OllamaClient); !ok {
		t.Errorf("expected *OllamaClient, got %T", client)
	}

	openaiCfg := config.LLMConfig{
		Provider: "openai",
		Model:    "gpt-4o-mini",
	}
	client, err = NewCompletionClient(openaiCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := client.(*OpenAIClient); !ok {
		t.Errorf("expected *OpenAIClient, got %T", client)
	}

	if _, err := NewCompletionClient(config.LLMConfig{Provider: "bedrock"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewEmbedder(t *testing.T) {
	embedder, err := NewEmbedder(config.EmbeddingConfig{
		Provider:   "ollama",
		BaseURL:    "http://localhost:11434",
		Model:      "nomic-embed-text",
		Dimensions: 768,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := embedder.(*OllamaEmbedder); !ok {
		t.Errorf("expected *OllamaEmbedder, got %T", embedder)
	}

	if _, err := NewEmbedder(config.EmbeddingConfig{Provider: "vertex"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
