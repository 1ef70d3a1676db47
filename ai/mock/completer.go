package mock

import (
	"context"
	"sync"

	"github.com/lectern-ai/lectern/ai"
)

// Completer is a test double for ai.Completer. Responses are served from a
// scripted queue; once the queue is drained the last response repeats.
// A CompleteFunc hook overrides the queue entirely when set.
type Completer struct {
	// CompleteFunc is called by Complete if set.
	CompleteFunc func(ctx context.Context, req ai.CompletionRequest) (string, error)

	mu        sync.Mutex
	responses []string
	requests  []ai.CompletionRequest
	callCount int
}

// NewCompleter creates a mock completer that replies with the given
// responses in order.
func NewCompleter(responses ...string) *Completer {
	return &Completer{responses: responses}
}

// Complete serves the next scripted response and records the request.
func (m *Completer) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	m.callCount++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}

	if len(m.responses) == 0 {
		return "", nil
	}
	idx := m.callCount - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

// Requests returns a copy of every recorded request, in call order.
func (m *Completer) Requests() []ai.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns the number of Complete calls.
func (m *Completer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears recorded requests, the call count, and injected behavior.
func (m *Completer) Reset(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteFunc = nil
	m.responses = responses
	m.requests = nil
	m.callCount = 0
}
