package config

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfig. The upstream variables use the
// names Azure tooling already exports so an existing shell setup works
// unchanged.
const (
	EnvEndpoint       = "AZURE_OPENAI_ENDPOINT"
	EnvAPIKey         = "AZURE_OPENAI_API_KEY"
	EnvDeployment     = "AZURE_OPENAI_DEPLOYMENT"
	EnvAPIVersion     = "AZURE_OPENAI_API_VERSION"
	EnvCABundle       = "AZURE_OPENAI_CA_BUNDLE"
	EnvTimeout        = "AZURE_OPENAI_TIMEOUT"
	EnvPort           = "PORT"
	EnvListenAddress  = "AZRELAY_LISTEN_ADDRESS"
	EnvLogLevel       = "AZRELAY_LOG_LEVEL"
	EnvLogFormat      = "AZRELAY_LOG_FORMAT"
	EnvMetricsEnabled = "AZRELAY_METRICS_ENABLED"
	EnvTracingEnabled = "AZRELAY_TRACING_ENABLED"
	EnvSecretsFileDir = "AZRELAY_SECRETS_FILE_DIR"
)

// SecretResolver replaces ${secret:name} references in a string with the
// referenced secret values.
type SecretResolver interface {
	ResolveReferences(ctx context.Context, input string) (string, error)
}

// LoadConfig builds the configuration from an optional YAML file and the
// environment.
//
// The loading sequence is:
//  1. Load YAML from path, if path is not empty
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
//
// An empty path configures the service from the environment alone.
// Secret references are left in place; call ResolveSecrets afterwards.
func LoadConfig(path string) (*Config, error) {
	cfg := newConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)

	envErrs := applyEnvOverrides(cfg)

	if err := validate(cfg, envErrs); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolveSecrets resolves ${secret:name} references in secret-bearing
// fields. A field that resolves to an empty value is an error: the service
// never starts with a placeholder credential.
func ResolveSecrets(ctx context.Context, cfg *Config, resolver SecretResolver) error {
	if resolver == nil || !IsSecretReference(cfg.Upstream.APIKey) {
		return nil
	}

	value, err := resolver.ResolveReferences(ctx, cfg.Upstream.APIKey)
	if err != nil {
		return fmt.Errorf("upstream.api_key: %w", err)
	}
	if strings.TrimSpace(value) == "" {
		return ValidationError{Errors: []FieldError{{
			Field:   "upstream.api_key",
			Message: "secret reference resolved to an empty value",
		}}}
	}

	cfg.Upstream.APIKey = strings.TrimSpace(value)
	return nil
}

// IsSecretReference reports whether value contains a ${secret:name}
// reference.
func IsSecretReference(value string) bool {
	return strings.Contains(value, "${secret:")
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Values that fail to parse are returned as field errors so
// a typo in the environment fails startup instead of being ignored.
func applyEnvOverrides(cfg *Config) []FieldError {
	var errs []FieldError

	// Upstream overrides
	if val := os.Getenv(EnvEndpoint); val != "" {
		cfg.Upstream.Endpoint = val
	}
	if val := os.Getenv(EnvAPIKey); val != "" {
		cfg.Upstream.APIKey = val
	}
	if val := os.Getenv(EnvDeployment); val != "" {
		cfg.Upstream.Deployment = val
	}
	if val := os.Getenv(EnvAPIVersion); val != "" {
		cfg.Upstream.APIVersion = val
	}
	if val := os.Getenv(EnvCABundle); val != "" {
		cfg.Upstream.CABundle = val
	}
	if val := os.Getenv(EnvTimeout); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Upstream.Timeout = d
		} else {
			errs = append(errs, envError(EnvTimeout, err))
		}
	}

	// Server overrides
	if val := os.Getenv(EnvListenAddress); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv(EnvPort); val != "" {
		if _, err := strconv.ParseUint(val, 10, 16); err != nil {
			errs = append(errs, envError(EnvPort, err))
		} else {
			host, _, err := net.SplitHostPort(cfg.Server.ListenAddress)
			if err != nil {
				host = ""
			}
			cfg.Server.ListenAddress = net.JoinHostPort(host, val)
		}
	}

	// Telemetry overrides
	if val := os.Getenv(EnvLogLevel); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv(EnvLogFormat); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		} else {
			errs = append(errs, envError(EnvMetricsEnabled, err))
		}
	}
	if val := os.Getenv(EnvTracingEnabled); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		} else {
			errs = append(errs, envError(EnvTracingEnabled, err))
		}
	}

	// Security overrides
	if val := os.Getenv(EnvSecretsFileDir); val != "" {
		cfg.Security.Secrets.FileDir = val
	}

	return errs
}

func envError(name string, err error) FieldError {
	return FieldError{
		Field:   "env." + name,
		Message: fmt.Sprintf("invalid value: %v", err),
	}
}
