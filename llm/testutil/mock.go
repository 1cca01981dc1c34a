// Package testutil provides test utilities for the llm package.
// It includes a scripted mock Completer for coordinator tests.
package testutil

import (
	"context"
	"sync"

	"github.com/qhy991/vagent/llm"
)

// MockCompleter is a thread-safe scripted completer for testing.
// It returns configured responses in sequence and captures call details.
//
// Usage:
//
//	// Single response mock
//	mock := &testutil.MockCompleter{
//	    Responses: []*llm.Response{
//	        {Content: `{"tool_calls": []}`, Model: "test-model"},
//	    },
//	}
//
//	// Error response
//	mock := &testutil.MockCompleter{
//	    Err: errors.New("connection failed"),
//	}
type MockCompleter struct {
	mu              sync.Mutex
	capturedContext context.Context
	capturedReqs    []llm.Request

	Responses []*llm.Response // Responses to return in sequence
	Err       error           // Error to return (takes precedence over Responses)

	callCount     int
	responseIndex int
}

// Complete implements llm.Completer. Returns the next response from
// Responses, or Err if set. The last response repeats once the script
// runs out.
func (m *MockCompleter) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.capturedContext = ctx
	m.capturedReqs = append(m.capturedReqs, req)
	m.callCount++

	if m.Err != nil {
		return nil, m.Err
	}

	if len(m.Responses) == 0 {
		return &llm.Response{Content: "", Model: "test-model"}, nil
	}

	resp := m.Responses[m.responseIndex]
	if m.responseIndex < len(m.Responses)-1 {
		m.responseIndex++
	}
	return resp, nil
}

// CallCount returns the number of times Complete() was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request passed to Complete().
func (m *MockCompleter) LastRequest() (llm.Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.capturedReqs) == 0 {
		return llm.Request{}, false
	}
	return m.capturedReqs[len(m.capturedReqs)-1], true
}

// Requests returns a copy of all captured requests.
func (m *MockCompleter) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Request, len(m.capturedReqs))
	copy(out, m.capturedReqs)
	return out
}

// Reset clears the mock's captured state and response cursor.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.responseIndex = 0
	m.capturedContext = nil
	m.capturedReqs = nil
}
