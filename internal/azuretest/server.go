// Package azuretest provides a mock Azure OpenAI chat completions endpoint
// for tests. The server speaks TLS with a self-signed certificate; tests
// trust it through Pool or WriteCABundle, never by disabling verification.
package azuretest

import (
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"relayhq/azrelay/pkg/providers"
)

// Values the mock server accepts. Requests with another deployment,
// api-version or key are rejected the way Azure rejects them.
const (
	Deployment = "Plastic_Boat"
	APIKey     = "azure-test-key-0123456789"
	APIVersion = "2024-02-15-preview"
)

// Response is a canned upstream response.
type Response struct {
	StatusCode int
	// Body is written as-is when it is a string or []byte and JSON-encoded
	// otherwise.
	Body    any
	Delay   time.Duration
	Headers map[string]string
}

// Server is a mock Azure OpenAI deployment.
type Server struct {
	server *httptest.Server

	mu       sync.Mutex
	response *Response // nil echoes the user message
	calls    int
	requests []Request
}

// Request is a request the server received.
type Request struct {
	Header  http.Header
	Payload providers.ChatCompletionRequest
}

// NewServer starts a TLS server that echoes the user message. It is closed
// when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{}
	s.server = httptest.NewTLSServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the endpoint base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close stops the server. Later requests fail with a transport error.
func (s *Server) Close() {
	s.server.Close()
}

// Pool returns a pool that trusts only this server.
func (s *Server) Pool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(s.server.Certificate())
	return pool
}

// WriteCABundle writes the server certificate to a PEM file under
// t.TempDir and returns its path.
func (s *Server) WriteCABundle(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ca.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: s.server.Certificate().Raw})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write CA bundle: %v", err)
	}
	return path
}

// Reply makes the server answer 200 with content as the first choice.
func (s *Server) Reply(content string) {
	s.SetResponse(Response{StatusCode: http.StatusOK, Body: ChatCompletion(content)})
}

// Fail makes the server answer status with body.
func (s *Server) Fail(status int, body string) {
	s.SetResponse(Response{StatusCode: status, Body: body})
}

// Echo restores the default "echo: <message>" reply.
func (s *Server) Echo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.response = nil
}

// SetResponse sets the response for every following request.
func (s *Server) SetResponse(r Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.response = &r
}

// Calls returns the number of requests received, including rejected ones.
func (s *Server) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Requests returns the accepted requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls++
	response := s.response
	s.mu.Unlock()

	switch {
	case r.Method != http.MethodPost || r.URL.Path != "/openai/deployments/"+Deployment+"/chat/completions":
		writeError(w, http.StatusNotFound, "DeploymentNotFound")
		return
	case r.URL.Query().Get("api-version") != APIVersion:
		writeError(w, http.StatusBadRequest, "unsupported api-version")
		return
	case r.Header.Get("api-key") != APIKey:
		writeError(w, http.StatusUnauthorized, "Access denied due to invalid subscription key.")
		return
	}

	var payload providers.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{Header: r.Header.Clone(), Payload: payload})
	s.mu.Unlock()

	if response == nil {
		response = &Response{
			StatusCode: http.StatusOK,
			Body:       ChatCompletion("echo: " + payload.Messages[len(payload.Messages)-1].Content),
		}
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	switch body := response.Body.(type) {
	case nil:
		w.WriteHeader(response.StatusCode)
	case string:
		w.WriteHeader(response.StatusCode)
		_, _ = w.Write([]byte(body))
	case []byte:
		w.WriteHeader(response.StatusCode)
		_, _ = w.Write(body)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(response.StatusCode)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": http.StatusText(status), "message": message},
	})
}

// ChatCompletion returns a chat completions response body with content as
// the only choice.
func ChatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-35-turbo",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]string{"role": "assistant", "content": content},
		}},
		"usage": map[string]int{"prompt_tokens": 9, "completion_tokens": 4, "total_tokens": 13},
	}
}
