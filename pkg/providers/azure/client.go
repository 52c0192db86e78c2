package azure

import (
	"context"
	"crypto/x509"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"relayhq/azrelay/pkg/providers"
)

// APIKeyHeader is the header Azure OpenAI reads the key from.
const APIKeyHeader = "api-key"

// DefaultName is the provider name used in logs, errors and metrics.
const DefaultName = "azure-openai"

// Config configures an Azure OpenAI deployment.
type Config struct {
	// Name identifies the provider; defaults to DefaultName
	Name string

	// Endpoint is the resource URL, e.g. https://my-resource.openai.azure.com/
	Endpoint string

	// APIKey is sent in the api-key header
	APIKey string

	// Deployment is the model deployment name
	Deployment string

	// APIVersion is the api-version query parameter
	APIVersion string

	// Timeout bounds a single call
	Timeout time.Duration

	// RootCAs is the trust pool for the endpoint certificate; nil uses the
	// system roots
	RootCAs *x509.CertPool
}

// Provider sends chat completions to one Azure OpenAI deployment.
type Provider struct {
	*providers.HTTPProvider

	name           string
	completionsURL string
	apiKey         atomic.Pointer[string]
}

// NewProvider validates cfg and creates a Provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}

	completionsURL, err := buildCompletionsURL(cfg)
	if err != nil {
		return nil, err
	}

	if err := checkAPIKey(cfg.Name, cfg.APIKey); err != nil {
		return nil, err
	}

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(providers.ProviderConfig{
			Name:    cfg.Name,
			Timeout: cfg.Timeout,
			RootCAs: cfg.RootCAs,
		}),
		name:           cfg.Name,
		completionsURL: completionsURL,
	}
	p.apiKey.Store(&cfg.APIKey)

	slog.Info("Azure OpenAI provider initialized",
		"provider", cfg.Name,
		"deployment", cfg.Deployment,
		"api_version", cfg.APIVersion,
		"timeout", cfg.Timeout,
	)

	return p, nil
}

// SendCompletion posts req to the deployment's chat completions endpoint.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.ChatCompletionRequest) (*providers.ChatCompletionResponse, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
		APIKeyHeader:   *p.apiKey.Load(),
	}

	var resp providers.ChatCompletionResponse
	if err := p.DoJSONRequest(ctx, http.MethodPost, p.completionsURL, req, &resp, headers); err != nil {
		return nil, err
	}

	if resp.Usage != nil {
		slog.DebugContext(ctx, "completion token usage",
			"provider", p.GetName(),
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens,
		)
	}

	return &resp, nil
}

// SetAPIKey replaces the key sent with subsequent requests. Requests
// already in flight keep the old key.
func (p *Provider) SetAPIKey(key string) error {
	if err := checkAPIKey(p.name, key); err != nil {
		return err
	}
	p.apiKey.Store(&key)
	return nil
}

func checkAPIKey(name, key string) error {
	if strings.TrimSpace(key) == "" {
		return &providers.ConfigError{
			Provider: name,
			Field:    "api_key",
			Message:  "API key is required",
		}
	}
	return nil
}

func buildCompletionsURL(cfg Config) (string, error) {
	if cfg.Endpoint == "" {
		return "", &providers.ConfigError{Provider: cfg.Name, Field: "endpoint", Message: "endpoint is required"}
	}
	base, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return "", &providers.ConfigError{Provider: cfg.Name, Field: "endpoint", Message: err.Error()}
	}
	if base.Scheme != "https" || base.Host == "" {
		return "", &providers.ConfigError{Provider: cfg.Name, Field: "endpoint", Message: "endpoint must be an absolute https URL"}
	}
	if cfg.Deployment == "" {
		return "", &providers.ConfigError{Provider: cfg.Name, Field: "deployment", Message: "deployment is required"}
	}
	if cfg.APIVersion == "" {
		return "", &providers.ConfigError{Provider: cfg.Name, Field: "api_version", Message: "API version is required"}
	}

	base.Path = strings.TrimRight(base.Path, "/") + "/openai/deployments/" + cfg.Deployment + "/chat/completions"
	base.RawPath = ""
	base.RawQuery = url.Values{"api-version": []string{cfg.APIVersion}}.Encode()
	base.Fragment = ""

	return base.String(), nil
}
