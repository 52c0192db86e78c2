package providers

import "context"

// Provider is a hosted chat completion endpoint.
//
// Implementations make exactly one attempt per call. They return
// *UpstreamError for a non-200 response, *TLSVerificationError or
// *TransportError when no response was received, and *ParseError when a
// 200 response cannot be decoded.
//
// Example usage:
//
//	resp, err := provider.SendCompletion(ctx, &providers.ChatCompletionRequest{
//	    Messages: []providers.Message{{Role: providers.RoleUser, Content: "Hello!"}},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Choices[0].Message.Content)
type Provider interface {
	// SendCompletion sends a completion request and returns the decoded
	// response.
	SendCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)

	// GetName returns the provider's configured name.
	GetName() string

	// IsHealthy reports whether recent requests reached the provider.
	IsHealthy() bool

	// GetHealth returns detailed health information.
	GetHealth() ProviderHealth

	// Close releases idle connections.
	Close() error
}
