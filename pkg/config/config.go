package config

import "time"

// Config is the root configuration for the azrelay service.
//
// A Config is built once at startup by Load and is treated as read-only
// afterwards. Components receive the sections they need as values or
// pointers at construction time; nothing reads configuration from a
// package-level variable.
type Config struct {
	// Server configures the inbound HTTP listener.
	Server ServerConfig `yaml:"server"`

	// Upstream configures the Azure OpenAI deployment that messages are
	// relayed to.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Telemetry configures logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security configures inbound TLS, secret resolution and certificate
	// expiry checks.
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig contains the inbound HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the address the server binds to.
	// Default: "127.0.0.1:5000"
	// Environment: AZRELAY_LISTEN_ADDRESS, or PORT to replace only the port.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed the upstream timeout or slow completions are
	// cut off before they can be relayed.
	// Default: 90s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// keep-alive connection.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of an inbound message request body.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS configures cross-origin access for browser clients.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	// Enabled turns the CORS middleware on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists origins allowed to call the API. "*" allows any.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists permitted HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists headers the browser may send.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders lists headers the browser may read.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// AllowCredentials permits cookies and credentials.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`

	// MaxAge is how long, in seconds, preflight results may be cached.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// UpstreamConfig describes the Azure OpenAI chat completions deployment.
type UpstreamConfig struct {
	// Endpoint is the resource endpoint, for example
	// "https://my-resource.openai.azure.com/". Must use https.
	// Required. Environment: AZURE_OPENAI_ENDPOINT
	Endpoint string `yaml:"endpoint"`

	// APIKey is sent in the api-key header. It may be a literal or a
	// ${secret:name} reference resolved at startup.
	// Required. Environment: AZURE_OPENAI_API_KEY
	APIKey string `yaml:"api_key"`

	// Deployment is the model deployment name in the request path.
	// Required. Environment: AZURE_OPENAI_DEPLOYMENT
	Deployment string `yaml:"deployment"`

	// APIVersion is sent as the api-version query parameter.
	// Default: "2024-02-15-preview"
	// Environment: AZURE_OPENAI_API_VERSION
	APIVersion string `yaml:"api_version"`

	// Timeout bounds a single upstream call, including reading the body.
	// Default: 60s
	// Environment: AZURE_OPENAI_TIMEOUT
	Timeout time.Duration `yaml:"timeout"`

	// CABundle is an optional PEM file of additional trusted roots. The
	// system roots are always trusted as well.
	// Environment: AZURE_OPENAI_CA_BUNDLE
	CABundle string `yaml:"ca_bundle"`
}

// TelemetryConfig groups the observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is json or text.
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPatterns adds custom redaction rules on top of the built-in
	// ones. The upstream API key is always redacted.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern is a custom log redaction rule.
type RedactPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	// Enabled exposes metrics on Path.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "azrelay"
	Namespace string `yaml:"namespace"`

	// Subsystem is the second metric name segment.
	// Default: "relay"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets are the histogram buckets for upstream latency, in
	// seconds.
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns on span export.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is reported as service.name.
	// Default: "azrelay"
	ServiceName string `yaml:"service_name"`

	// Sampler is one of always, never, ratio, parent_based.
	// Default: "parent_based"
	Sampler string `yaml:"sampler"`

	// SampleRatio is used by the ratio and parent_based samplers.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds exporter calls.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// SecurityConfig groups TLS, secrets and certificate checks.
type SecurityConfig struct {
	TLS          TLSConfig          `yaml:"tls"`
	Secrets      SecretsConfig      `yaml:"secrets"`
	Certificates CertificatesConfig `yaml:"certificates"`
}

// TLSConfig configures TLS on the inbound listener.
type TLSConfig struct {
	// Enabled serves HTTPS instead of HTTP.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the PEM server certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the PEM private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is "1.2" or "1.3".
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// Reload watches CertFile and KeyFile and swaps the certificate when
	// they change.
	// Default: false
	Reload bool `yaml:"reload"`
}

// SecretsConfig configures where ${secret:name} references resolve.
type SecretsConfig struct {
	// EnvPrefix is prepended to environment variable names derived from
	// secret names ("azure-openai-api-key" becomes PREFIX+"AZURE_OPENAI_API_KEY").
	// Default: ""
	EnvPrefix string `yaml:"env_prefix"`

	// FileDir is an optional directory of secret files, one secret per
	// file, as mounted by Kubernetes or Docker secrets.
	FileDir string `yaml:"file_dir"`
}

// CertificatesConfig configures the scheduled certificate expiry check.
type CertificatesConfig struct {
	// CheckSchedule is a cron expression or descriptor.
	// Default: "@every 1h"
	CheckSchedule string `yaml:"check_schedule"`

	// WarnBefore marks a certificate as expiring when it has less than this
	// much validity left.
	// Default: 720h (30 days)
	WarnBefore time.Duration `yaml:"warn_before"`
}
