// Package testutil provides testing utilities for restext packages.
package testutil

import (
	"net/http"
	"sync"
)

// MockResponse defines what a MockHandler writes.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockHandler is a configurable http.Handler that counts invocations.
type MockHandler struct {
	mu       sync.RWMutex
	response MockResponse
	before   func(r *http.Request)

	// Tracking
	RequestCount      int
	ConditionalCount  int
	LastRequestHeader http.Header
}

// NewMockHandler returns a handler answering with resp.
func NewMockHandler(resp MockResponse) *MockHandler {
	return &MockHandler{response: resp}
}

// ServeHTTP implements http.Handler.
func (m *MockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.RequestCount++
	m.LastRequestHeader = r.Header.Clone()
	if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Match") != "" {
		m.ConditionalCount++
	}
	resp := m.response
	before := m.before
	m.mu.Unlock()

	if before != nil {
		before(r)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if resp.Body != "" {
		_, _ = w.Write([]byte(resp.Body))
	}
}

// SetResponse replaces the configured response.
func (m *MockHandler) SetResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = resp
}

// OnRequest registers a hook that runs before the response is written.
func (m *MockHandler) OnRequest(fn func(r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.before = fn
}

// Reset clears all tracking counters.
func (m *MockHandler) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.ConditionalCount = 0
	m.LastRequestHeader = nil
}

// GetRequestCount returns the number of requests served.
func (m *MockHandler) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetConditionalCount returns the number of conditional requests served.
func (m *MockHandler) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ConditionalCount
}

// NewJSONResponse creates a 200 OK JSON response.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Vary":         "Accept",
		},
	}
}

// NewNotFoundResponse creates a 404 response with an API error body.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"detail":"Not found."}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewServerErrorResponse creates a 500 response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"detail":"A server error occurred."}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}
