package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sqlscribe/sqlscribe/pkg/apperrors"
)

// OllamaClient speaks the Ollama native generate API. The OpenAI SDK cannot
// be reused here because Ollama's /api/generate contract differs from
// /v1/chat/completions.
type OllamaClient struct {
	baseURL     string
	model       string
	temperature float32
	topP        float32
	maxTokens   int
	httpClient  *http.Client
}

// NewOllamaClient builds a completion client for the Ollama endpoint at
// baseURL (for example http://localhost:11434).
func NewOllamaClient(baseURL, model string, temperature, topP float32, maxTokens int, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		temperature: temperature,
		topP:        topP,
		maxTokens:   maxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Complete sends the prompt to /api/generate and returns the extracted SQL.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: c.temperature,
			TopP:        c.topP,
			NumPredict:  c.maxTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal generate request: %v", apperrors.ErrCompletion, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build generate request: %v", apperrors.ErrCompletion, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: call ollama: %v", apperrors.ErrCompletion, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: ollama returned status %d: %s", apperrors.ErrCompletion, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decode generate response: %v", apperrors.ErrCompletion, err)
	}

	sql := ExtractSQL(genResp.Response)
	if sql == "" {
		return "", fmt.Errorf("%w: model returned an empty response", apperrors.ErrCompletion)
	}
	return sql, nil
}

func (c *OllamaClient) GetModel() string    { return c.model }
func (c *OllamaClient) GetEndpoint() string { return c.baseURL }

// OllamaEmbedder speaks the Ollama native embeddings API.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimensions int
	httpClient *http.Client
}

// NewOllamaEmbedder builds an embedder for the Ollama endpoint at baseURL.
// dimensions is the expected vector width of the model; mismatched responses
// are rejected rather than written to the vector store.
func NewOllamaEmbedder(baseURL, model string, dimensions int, timeout time.Duration) *OllamaEmbedder {
	return &OllamaEmbedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed sends the text to /api/embeddings and returns the vector.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(ollamaEmbeddingRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal embedding request: %v", apperrors.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build embedding request: %v", apperrors.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: call ollama: %v", apperrors.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", apperrors.ErrEmbedding, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var embResp ollamaEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("%w: decode embedding response: %v", apperrors.ErrEmbedding, err)
	}

	if len(embResp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: model returned an empty embedding", apperrors.ErrEmbedding)
	}
	if e.dimensions > 0 && len(embResp.Embedding) != e.dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", apperrors.ErrEmbedding, e.dimensions, len(embResp.Embedding))
	}
	return embResp.Embedding, nil
}

func (e *OllamaEmbedder) GetModel() string { return e.model }
