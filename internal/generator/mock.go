package generator

import (
	"context"
	"sync"
)

// MockResponse is a canned reply for the MockClient.
type MockResponse struct {
	Body []byte
	Err  error
}

// MockClient is a deterministic Client for testing.
// It returns canned responses in FIFO order and records all requests.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockClient creates a MockClient with the given canned responses.
func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{responses: responses}
}

// Generate returns the next canned response, or a TransportError when
// the queue is empty.
func (m *MockClient) Generate(_ context.Context, req Request) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &TransportError{}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return resp.Body, nil
}

// Endpoint returns "mock".
func (m *MockClient) Endpoint() string {
	return "mock"
}

// CallCount returns the number of Generate calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
