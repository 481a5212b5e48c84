package llm

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
)

// Reply is one scripted answer for MockProvider.
type Reply struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// JSONReply scripts a reply whose content is v encoded as JSON.
func JSONReply(v any) Reply {
	b, err := json.Marshal(v)
	if err != nil {
		return Reply{Err: err}
	}
	return Reply{Content: b}
}

// MockProvider answers from a script, in order, and keeps every request.
// Scripted content is checked against the request schema like a real
// vendor reply.
type MockProvider struct {
	mu       sync.Mutex
	script   []Reply
	requests []Request
}

// NewMockProvider creates a MockProvider with an initial script.
func NewMockProvider(script ...Reply) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) ModelID() string { return VendorMock }

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	if len(m.script) == 0 {
		m.mu.Unlock()
		return nil, &Error{Kind: ErrUnavailable, Vendor: VendorMock, Err: errors.New("script exhausted")}
	}
	r := m.script[0]
	m.script = m.script[1:]
	m.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	return finish(VendorMock, req, r.Content, r.Usage, VendorMock, StopEnd)
}

// Push appends replies to the script.
func (m *MockProvider) Push(replies ...Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, replies...)
}

// Requests returns the requests seen so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.requests)
}

// CallCount is len(Requests()).
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
