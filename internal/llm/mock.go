package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one canned reply for MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays canned responses in order and records every
// request. Content is returned unvalidated so callers can exercise their
// own parsing of malformed output.
type MockProvider struct {
	mu      sync.Mutex
	pending []MockResponse
	Calls   []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{pending: responses}
}

// Generate pops the next canned response. An empty queue reports
// ErrProviderUnavailable.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	if len(m.pending) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	next := m.pending[0]
	m.pending = m.pending[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	usage := next.Usage
	if usage.TotalTokens == 0 {
		usage = newUsage(usage.InputTokens, usage.OutputTokens)
	}
	return &Response{Content: next.Content, Usage: usage, Model: "mock", StopReason: StopEnd}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse queues another canned response.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	m.pending = append(m.pending, resp)
	m.mu.Unlock()
}

// CallCount reports how many requests were made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
