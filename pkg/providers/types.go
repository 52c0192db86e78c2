package providers

import (
	"crypto/x509"
	"time"
)

// Message is a single chat message in a completion request or response.
type Message struct {
	// Role is the message author: "system", "user" or "assistant"
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// RoleUser is the role of messages written by the end user.
const RoleUser = "user"

// ChatCompletionRequest is the body of a chat completions call. The model
// is selected by the deployment in the URL, so the body carries only the
// messages.
type ChatCompletionRequest struct {
	Messages []Message `json:"messages"`
}

// ChatCompletionResponse is the subset of the chat completions response the
// relay reads.
type ChatCompletionResponse struct {
	// ID is the provider's response identifier
	ID string `json:"id,omitempty"`

	// Model is the model that served the request
	Model string `json:"model,omitempty"`

	// Choices holds the generated replies
	Choices []Choice `json:"choices"`

	// Usage reports token consumption when the provider includes it
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Choice is one generated reply.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderHealth represents the reachability of a provider as observed from
// real traffic.
type ProviderHealth struct {
	// IsHealthy is false after FailureThreshold consecutive transport or
	// TLS failures
	IsHealthy bool

	// LastCheck is when the health state last changed
	LastCheck time.Time

	// ConsecutiveFailures counts transport or TLS failures since the last
	// response
	ConsecutiveFailures int

	// LastError is the most recent failure, if any
	LastError error

	// LastStatusCode is the status of the most recent response
	LastStatusCode int

	// TotalRequests counts every attempt
	TotalRequests int64

	// FailedRequests counts attempts that did not return 200
	FailedRequests int64
}

// ProviderConfig configures an HTTPProvider.
type ProviderConfig struct {
	// Name identifies the provider in logs and errors
	Name string

	// Timeout bounds one request, including reading the response body
	Timeout time.Duration

	// RootCAs is the trust pool for verifying the provider's certificate.
	// Nil uses the system roots.
	RootCAs *x509.CertPool

	// MaxIdleConns is the total idle connection limit
	MaxIdleConns int

	// MaxIdleConnsPerHost is the per-host idle connection limit
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept
	IdleConnTimeout time.Duration

	// FailureThreshold is the number of consecutive transport failures
	// after which the provider reports unhealthy
	FailureThreshold int
}

// Default connection settings.
const (
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultFailureThreshold    = 3

	// MaxErrorBodyBytes bounds how much of a non-200 body is kept for logs.
	MaxErrorBodyBytes = 4096

	// MaxResponseBytes bounds how much of a 200 body is read.
	MaxResponseBytes = 10 * 1024 * 1024
)
