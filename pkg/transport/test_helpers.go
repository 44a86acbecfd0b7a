package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// MockAgent is an httptest server that answers like a Jolokia agent mounted
// at /jolokia. Responses are keyed by the escaped path below the agent root,
// for example "read/java.lang:type=Memory/HeapMemoryUsage".
type MockAgent struct {
	server *httptest.Server

	mu        sync.Mutex
	requests  []RecordedRequest
	responses map[string]*MockResponse
	delay     time.Duration
	failNext  int
	failCode  int
}

// MockResponse represents a configurable agent response
type MockResponse struct {
	// StatusCode is the HTTP status; zero means 200
	StatusCode int
	Headers    map[string]string
	// Body is written as is when it is a string or []byte, otherwise JSON encoded
	Body interface{}
}

// RecordedRequest is a request seen by MockAgent
type RecordedRequest struct {
	// Path is the escaped path below the agent root
	Path   string
	Query  map[string][]string
	Header http.Header
}

// NewMockAgent starts a new mock agent
func NewMockAgent() *MockAgent {
	m := &MockAgent{
		responses: make(map[string]*MockResponse),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handler))
	return m
}

func (m *MockAgent) handler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.EscapedPath(), "/jolokia")
	path = strings.TrimPrefix(path, "/")

	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Path:   path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	})
	delay := m.delay
	fail := m.failNext > 0
	failCode := m.failCode
	if fail {
		m.failNext--
	}
	resp, ok := m.responses[path]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if fail {
		http.Error(w, http.StatusText(failCode), failCode)
		return
	}

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ErrorEnvelope(404,
			"javax.management.InstanceNotFoundException",
			fmt.Sprintf("javax.management.InstanceNotFoundException : %s", path)))
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	if resp.StatusCode > 0 {
		w.WriteHeader(resp.StatusCode)
	}

	switch body := resp.Body.(type) {
	case nil:
	case []byte:
		_, _ = w.Write(body)
	case string:
		_, _ = w.Write([]byte(body))
	default:
		if err := json.NewEncoder(w).Encode(body); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// URL returns the agent base URL, ending in /jolokia
func (m *MockAgent) URL() string {
	return m.server.URL + "/jolokia"
}

// SetResponse sets the response for an escaped path
func (m *MockAgent) SetResponse(path string, response *MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = response
}

// SetValue answers path with a status 200 envelope around value
func (m *MockAgent) SetValue(path string, value interface{}) {
	m.SetResponse(path, &MockResponse{Body: Envelope(value)})
}

// SetDelay delays every response, honoring client cancellation
func (m *MockAgent) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// FailNext answers the next n requests with a plain-text HTTP error
func (m *MockAgent) FailNext(n, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
	m.failCode = statusCode
}

// Requests returns the requests received so far
func (m *MockAgent) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of requests received
func (m *MockAgent) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Close shuts the server down
func (m *MockAgent) Close() {
	m.server.Close()
}

// Envelope builds a status 200 response body
func Envelope(value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"status":    200,
		"timestamp": 1700000000,
		"value":     value,
	}
}

// ErrorEnvelope builds an agent error response body
func ErrorEnvelope(status int, errorType, message string) map[string]interface{} {
	return map[string]interface{}{
		"status":     status,
		"timestamp":  1700000000,
		"error_type": errorType,
		"error":      message,
	}
}

// MockTransport is an in-memory Transport. Handler answers every request;
// when nil, bodies are looked up by escaped URL path in Bodies.
type MockTransport struct {
	Handler func(ctx context.Context, req *Request) ([]byte, error)
	Bodies  map[string][]byte

	mu       sync.Mutex
	requests []*Request
	closed   bool
}

// NewMockTransport creates a mock transport with no canned bodies
func NewMockTransport() *MockTransport {
	return &MockTransport{Bodies: make(map[string][]byte)}
}

// SendRequest records req and answers it
func (m *MockTransport) SendRequest(ctx context.Context, req *Request) ([]byte, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	handler := m.Handler
	body, ok := m.Bodies[req.URL.EscapedPath()]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if handler != nil {
		return handler(ctx, req)
	}
	if !ok {
		return nil, fmt.Errorf("no mock body for %s", req.URL.EscapedPath())
	}
	return body, nil
}

// Close marks the transport closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called
func (m *MockTransport) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Requests returns the requests sent so far
func (m *MockTransport) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns the number of requests sent
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, timeout time.Duration, check func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timeout waiting for condition: %s", msg)
}
