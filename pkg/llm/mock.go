package llm

import "context"

// MockCompletionClient implements CompletionClient for tests. Set the
// function fields to control behavior per test case.
type MockCompletionClient struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
	Model        string
	Endpoint     string
}

var _ CompletionClient = (*MockCompletionClient)(nil)

func (m *MockCompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "SELECT 1", nil
}

func (m *MockCompletionClient) GetModel() string {
	if m.Model != "" {
		return m.Model
	}
	return "mock-model"
}

func (m *MockCompletionClient) GetEndpoint() string {
	if m.Endpoint != "" {
		return m.Endpoint
	}
	return "http://mock"
}

// MockEmbedder implements Embedder for tests.
type MockEmbedder struct {
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)
	Model     string
}

var _ Embedder = (*MockEmbedder)(nil)

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) GetModel() string {
	if m.Model != "" {
		return m.Model
	}
	return "mock-embedder"
}
