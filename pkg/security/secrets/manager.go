package secrets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"relayhq/azrelay/pkg/config"
)

// secretRefRegex matches ${secret:name} references.
var secretRefRegex = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Manager resolves secrets from an ordered list of providers. The first
// provider that supports a name and returns a value wins.
type Manager struct {
	providers []Provider
	logger    *slog.Logger
}

// NewManager creates a manager over providers, tried in order.
func NewManager(providers []Provider) *Manager {
	return &Manager{
		providers: providers,
		logger:    slog.Default().With("component", "secrets"),
	}
}

// NewManagerFromConfig builds the standard provider chain: the secrets
// directory first when configured, then the environment.
func NewManagerFromConfig(cfg config.SecretsConfig) (*Manager, error) {
	var providers []Provider
	if cfg.FileDir != "" {
		fp, err := NewFileProvider(cfg.FileDir, true)
		if err != nil {
			return nil, err
		}
		providers = append(providers, fp)
	}
	providers = append(providers, NewEnvProvider(cfg.EnvPrefix))
	return NewManager(providers), nil
}

// GetSecret returns the value for name.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	var errs []error
	for _, p := range m.providers {
		if !p.Supports(name) {
			continue
		}
		value, err := p.GetSecret(ctx, name)
		if err != nil {
			m.logger.Debug("provider could not resolve secret",
				"provider", p.Name(),
				"name", redactSecretName(name),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}

		m.logger.Debug("secret resolved", "provider", p.Name(), "name", redactSecretName(name))
		return value, nil
	}

	if len(errs) == 0 {
		return "", fmt.Errorf("%w: %q (no provider supports it)", ErrNotFound, name)
	}
	return "", fmt.Errorf("failed to get secret %q: %w", name, errors.Join(errs...))
}

// ResolveReferences replaces every ${secret:name} in input with its value.
// On failure the unresolved references are left in place and the error
// lists each one.
func (m *Manager) ResolveReferences(ctx context.Context, input string) (string, error) {
	var errs []error
	output := secretRefRegex.ReplaceAllStringFunc(input, func(match string) string {
		name := secretRefRegex.FindStringSubmatch(match)[1]
		value, err := m.GetSecret(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return match
		}
		return value
	})
	if len(errs) > 0 {
		return output, fmt.Errorf("failed to resolve secret references: %w", errors.Join(errs...))
	}
	return output, nil
}

// OnChange registers fn with every provider that watches its backing
// store. fn runs on the provider's watch goroutine after its cached values
// were dropped, so a GetSecret from fn reads the new value. It reports
// whether any provider accepted the callback.
func (m *Manager) OnChange(fn func()) bool {
	watching := false
	for _, p := range m.providers {
		if wp, ok := p.(WatchingProvider); ok {
			wp.OnChange(fn)
			watching = true
		}
	}
	return watching
}

// Close releases provider resources such as file watchers.
func (m *Manager) Close() error {
	var errs []error
	for _, p := range m.providers {
		if c, ok := p.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// redactSecretName keeps the first and last two characters of name.
func redactSecretName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
