package rpc

import (
	"context"
	"sync"
)

// MockCallHandler answers one call of a MockCaller. Returning an error makes
// the caller see a transport failure; protocol errors are returned as a
// Response built with NewErrorResponse.
type MockCallHandler func(params []any) (*Response, error)

var _ Caller = (*MockCaller)(nil)

// MockCaller is an in-memory Caller routing requests to per-method handlers.
// It records every request it receives.
type MockCaller struct {
	mu       sync.Mutex
	handlers map[string]MockCallHandler
	requests []Request
}

func NewMockCaller() *MockCaller {
	return &MockCaller{handlers: make(map[string]MockCallHandler)}
}

// RegisterHandler routes calls of method to handler.
func (m *MockCaller) RegisterHandler(method string, handler MockCallHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method] = handler
}

// RegisterResult answers every call of method with result.
func (m *MockCaller) RegisterResult(method string, result any) {
	m.RegisterHandler(method, func([]any) (*Response, error) {
		res, err := NewResponse(0, result)
		return &res, err
	})
}

// Call dispatches req to its handler. Unknown methods get the JSON-RPC
// "Method not found" error. The response id is always set to the request id.
func (m *MockCaller) Call(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.requests = append(m.requests, *req)
	handler, ok := m.handlers[req.Method]
	m.mu.Unlock()

	if !ok {
		res := NewErrorResponse(req.ID, -32601, "Method not found")
		return &res, nil
	}

	res, err := handler(req.Params)
	if err != nil {
		return nil, err
	}
	res.ID = req.ID
	return res, nil
}

// Requests returns the requests received so far, oldest first.
func (m *MockCaller) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
