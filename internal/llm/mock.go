package llm

import (
	"context"
	"sync"
)

// MockGateway is a scripted Gateway implementation for tests. Responses are
// consumed in FIFO order; once the script is exhausted the last response
// repeats. When Err is set, every call fails with it.
type MockGateway struct {
	mu        sync.Mutex
	responses []string
	Err       error
	Calls     int
}

// Ensure MockGateway implements the Gateway interface.
var _ Gateway = (*MockGateway)(nil)

// NewMockGateway creates a mock that replays the given responses.
func NewMockGateway(responses ...string) *MockGateway {
	return &MockGateway{responses: responses}
}

// NewFailingGateway creates a mock where every call fails with err.
func NewFailingGateway(err error) *MockGateway {
	return &MockGateway{Err: err}
}

// GenerateText returns the next scripted response.
func (m *MockGateway) GenerateText(ctx context.Context, prompt string) (string, error) {
	return m.next()
}

// EvaluateText returns the next scripted response.
func (m *MockGateway) EvaluateText(ctx context.Context, prompt string) (string, error) {
	return m.next()
}

func (m *MockGateway) next() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.responses) == 0 {
		return "", ErrUnavailable
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}
