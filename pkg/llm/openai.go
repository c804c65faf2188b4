package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
)

// OpenAIClient generates completions through any OpenAI-compatible chat
// endpoint (OpenAI itself, vLLM, LM Studio, and similar gateways).
type OpenAIClient struct {
	client      *openai.Client
	model       string
	endpoint    string
	temperature float32
	topP        float32
	maxTokens   int
}

// NewOpenAIClient builds a completion client. baseURL may be empty for the
// hosted OpenAI API; self-hosted gateways pass their own URL.
func NewOpenAIClient(baseURL, apiKey, model string, temperature, topP float32, maxTokens int, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		endpoint:    cfg.BaseURL,
		temperature: temperature,
		topP:        topP,
		maxTokens:   maxTokens,
	}
}

// Complete sends the prompt as a single user message and returns the
// extracted SQL.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		TopP:        c.topP,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", apperrors.ErrCompletion, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", apperrors.ErrCompletion)
	}

	sql := ExtractSQL(resp.Choices[0].Message.Content)
	if sql == "" {
		return "", fmt.Errorf("%w: model returned an empty response", apperrors.ErrCompletion)
	}
	return sql, nil
}

func (c *OpenAIClient) GetModel() string    { return c.model }
func (c *OpenAIClient) GetEndpoint() string { return c.endpoint }

// OpenAIEmbedder produces embeddings through an OpenAI-compatible endpoint.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIEmbedder builds an embedder against baseURL (empty for hosted
// OpenAI). dimensions must match the vector store column width.
func NewOpenAIEmbedder(baseURL, apiKey, model string, dimensions int, timeout time.Duration) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		dimensions: dimensions,
	}
}

// Embed returns the embedding vector for the given text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create embeddings: %v", apperrors.ErrEmbedding, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: response contained no embedding", apperrors.ErrEmbedding)
	}

	embedding := resp.Data[0].Embedding
	if e.dimensions > 0 && len(embedding) != e.dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", apperrors.ErrEmbedding, e.dimensions, len(embedding))
	}
	return embedding, nil
}

func (e *OpenAIEmbedder) GetModel() string { return e.model }
