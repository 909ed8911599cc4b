package llm

import (
	"context"
	"sync"
)

// MockProvider answers completions from a handler function and records every
// request it receives.
type MockProvider struct {
	mu      sync.Mutex
	handler func(req Request) (*Completion, error)
	calls   []Request
}

// Ensure MockProvider implements LLMProvider interface.
var _ LLMProvider = (*MockProvider)(nil)

func NewMockProvider(handler func(req Request) (*Completion, error)) *MockProvider {
	return &MockProvider{handler: handler}
}

func (m *MockProvider) Complete(ctx context.Context, req Request, opts ...Option) (*Completion, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.handler(req)
}

func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}
