package llm

import (
	"fmt"

	"github.com/sqlscribe/sqlscribe/pkg/config"
)

// NewCompletionClient constructs the completion client selected by
// cfg.Provider.
func NewCompletionClient(cfg config.LLMConfig) (CompletionClient, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaClient(
			cfg.BaseURL,
			cfg.Model,
			float32(cfg.Temperature),
			float32(cfg.TopP),
			cfg.MaxTokens,
			cfg.Timeout(),
		), nil
	case "openai":
		return NewOpenAIClient(
			cfg.BaseURL,
			cfg.APIKey,
			cfg.Model,
			float32(cfg.Temperature),
			float32(cfg.TopP),
			cfg.MaxTokens,
			cfg.Timeout(),
		), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// NewEmbedder constructs the embedder selected by cfg.Provider.
func NewEmbedder(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaEmbedder(cfg.BaseURL, cfg.Model, cfg.Dimensions, cfg.Timeout()), nil
	case "openai":
		return NewOpenAIEmbedder(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Dimensions, cfg.Timeout()), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
}
