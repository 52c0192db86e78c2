package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable LoadConfig reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvEndpoint, EnvAPIKey, EnvDeployment, EnvAPIVersion, EnvCABundle,
		EnvTimeout, EnvPort, EnvListenAddress, EnvLogLevel, EnvLogFormat,
		EnvMetricsEnabled, EnvTracingEnabled, EnvSecretsFileDir,
	} {
		t.Setenv(name, "")
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvEndpoint, "https://unit.openai.azure.com/")
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvDeployment, "Plastic_Boat")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "azrelay.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Upstream.Endpoint != "https://unit.openai.azure.com/" {
		t.Errorf("Endpoint = %q, want %q", cfg.Upstream.Endpoint, "https://unit.openai.azure.com/")
	}
	if cfg.Upstream.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want %q", cfg.Upstream.APIKey, "env-key")
	}
	if cfg.Upstream.Deployment != "Plastic_Boat" {
		t.Errorf("Deployment = %q, want %q", cfg.Upstream.Deployment, "Plastic_Boat")
	}
	if cfg.Upstream.APIVersion != DefaultAPIVersion {
		t.Errorf("APIVersion = %q, want %q", cfg.Upstream.APIVersion, DefaultAPIVersion)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:8443"
  read_timeout: "10s"
  cors:
    enabled: false

upstream:
  endpoint: "https://file.openai.azure.com"
  api_key: "file-key"
  deployment: "gpt-4o"
  api_version: "2024-06-01"
  timeout: "15s"

telemetry:
  logging:
    level: "debug"
    format: "text"
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:8443" {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, "0.0.0.0:8443")
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 10*time.Second)
	}
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("WriteTimeout = %v, want default %v", cfg.Server.WriteTimeout, DefaultWriteTimeout)
	}
	if cfg.Server.CORS.Enabled {
		t.Error("explicit cors.enabled=false should survive defaults")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("explicit metrics.enabled=false should survive defaults")
	}
	if cfg.Upstream.APIVersion != "2024-06-01" {
		t.Errorf("APIVersion = %q, want %q", cfg.Upstream.APIVersion, "2024-06-01")
	}
	if cfg.Upstream.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want %v", cfg.Upstream.Timeout, 15*time.Second)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, "debug")
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvTimeout, "5s")
	t.Setenv(EnvLogLevel, "warn")

	path := writeConfig(t, `
upstream:
  endpoint: "https://file.openai.azure.com"
  api_key: "from-file"
  deployment: "gpt-4o"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Upstream.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want %q", cfg.Upstream.APIKey, "from-env")
	}
	if cfg.Upstream.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want %v", cfg.Upstream.Timeout, 5*time.Second)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, "warn")
	}
}

func TestLoadConfig_UpperCaseLogLevel(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Telemetry.Logging.Level != "DEBUG" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Telemetry.Logging.Level, "DEBUG")
	}
}

func TestLoadConfig_PortOverride(t *testing.T) {
	tests := []struct {
		name   string
		listen string
		port   string
		want   string
	}{
		{name: "default host", port: "8080", want: "127.0.0.1:8080"},
		{name: "explicit host", listen: "0.0.0.0:5000", port: "9000", want: "0.0.0.0:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setRequiredEnv(t)
			t.Setenv(EnvListenAddress, tt.listen)
			t.Setenv(EnvPort, tt.port)

			cfg, err := LoadConfig("")
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Server.ListenAddress != tt.want {
				t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, tt.want)
			}
		})
	}
}

func TestLoadConfig_MissingSecretsFailFast(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEndpoint, "https://unit.openai.azure.com/")

	_, err := LoadConfig("")
	if err == nil {
		t.Fatal("expected error when API key and deployment are missing")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want ValidationError", err)
	}

	fields := map[string]bool{}
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"upstream.api_key", "upstream.deployment"} {
		if !fields[want] {
			t.Errorf("missing field error for %s in %v", want, verr.Errors)
		}
	}
}

func TestLoadConfig_InvalidEnvValue(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)
	t.Setenv(EnvTimeout, "soon")

	_, err := LoadConfig("")
	if err == nil {
		t.Fatal("expected error for unparseable timeout")
	}
	if !strings.Contains(err.Error(), EnvTimeout) {
		t.Errorf("error = %v, want mention of %s", err, EnvTimeout)
	}
}

func TestLoadConfig_FileErrors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil || !strings.Contains(err.Error(), "failed to read configuration file") {
			t.Errorf("error = %v, want read failure", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "upstream: [unclosed"))
		if err == nil || !strings.Contains(err.Error(), "failed to parse configuration file") {
			t.Errorf("error = %v, want parse failure", err)
		}
	})
}

type stubResolver struct {
	values map[string]string
	err    error
	calls  int
}

func (s *stubResolver) ResolveReferences(_ context.Context, input string) (string, error) {
	s.calls++
	if s.err != nil {
		return input, s.err
	}
	if v, ok := s.values[input]; ok {
		return v, nil
	}
	return input, nil
}

func TestResolveSecrets(t *testing.T) {
	t.Run("resolves reference", func(t *testing.T) {
		cfg := MinimalConfig()
		cfg.Upstream.APIKey = "${secret:azure-openai-api-key}"
		r := &stubResolver{values: map[string]string{"${secret:azure-openai-api-key}": "resolved\n"}}

		if err := ResolveSecrets(context.Background(), cfg, r); err != nil {
			t.Fatalf("ResolveSecrets() error = %v", err)
		}
		if cfg.Upstream.APIKey != "resolved" {
			t.Errorf("APIKey = %q, want %q", cfg.Upstream.APIKey, "resolved")
		}
	})

	t.Run("literal key untouched", func(t *testing.T) {
		cfg := MinimalConfig()
		r := &stubResolver{}

		if err := ResolveSecrets(context.Background(), cfg, r); err != nil {
			t.Fatalf("ResolveSecrets() error = %v", err)
		}
		if r.calls != 0 {
			t.Errorf("resolver calls = %d, want 0", r.calls)
		}
	})

	t.Run("resolver failure", func(t *testing.T) {
		cfg := MinimalConfig()
		cfg.Upstream.APIKey = "${secret:missing}"
		r := &stubResolver{err: errors.New("secret not found")}

		err := ResolveSecrets(context.Background(), cfg, r)
		if err == nil || !strings.Contains(err.Error(), "upstream.api_key") {
			t.Errorf("error = %v, want upstream.api_key failure", err)
		}
	})

	t.Run("empty value", func(t *testing.T) {
		cfg := MinimalConfig()
		cfg.Upstream.APIKey = "${secret:blank}"
		r := &stubResolver{values: map[string]string{"${secret:blank}": "  "}}

		var verr ValidationError
		if err := ResolveSecrets(context.Background(), cfg, r); !errors.As(err, &verr) {
			t.Errorf("error = %v, want ValidationError", err)
		}
	})
}
