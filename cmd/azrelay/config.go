package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"relayhq/azrelay/pkg/cli"
	"relayhq/azrelay/pkg/config"
	"relayhq/azrelay/pkg/security/secrets"
	"relayhq/azrelay/pkg/telemetry/logging"
)

// loadConfig loads path and the environment, then resolves secret
// references. Configuration problems are returned as *cli.ConfigError.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	cfg, key, err := loadConfigWithKey(ctx, path)
	if err != nil {
		return nil, err
	}
	_ = key.Close()
	return cfg, nil
}

// loadConfigWithKey is loadConfig for long-running commands. When the API
// key is a secret reference, the returned upstreamKey keeps the secrets
// manager open so the key can follow rotations; otherwise it is nil.
func loadConfigWithKey(ctx context.Context, path string) (*config.Config, *upstreamKey, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, configError(err)
	}

	if !config.IsSecretReference(cfg.Upstream.APIKey) {
		return cfg, nil, nil
	}

	manager, err := secrets.NewManagerFromConfig(cfg.Security.Secrets)
	if err != nil {
		return nil, nil, cli.NewConfigError("security.secrets", err.Error())
	}

	key := &upstreamKey{manager: manager, ref: cfg.Upstream.APIKey}
	if err := config.ResolveSecrets(ctx, cfg, manager); err != nil {
		_ = manager.Close()
		return nil, nil, configError(err)
	}
	key.current = cfg.Upstream.APIKey

	return cfg, key, nil
}

// upstreamKey is a resolved ${secret:...} API key together with the
// manager that resolved it.
type upstreamKey struct {
	manager *secrets.Manager
	ref     string

	mu      sync.Mutex
	current string
}

func (k *upstreamKey) Close() error {
	if k == nil {
		return nil
	}
	return k.manager.Close()
}

// follow re-resolves the key whenever a secrets provider reports a change
// and passes each new non-empty value to apply. It reports whether any
// provider watches for changes.
func (k *upstreamKey) follow(ctx context.Context, logger *slog.Logger, apply func(string) error) bool {
	if k == nil {
		return false
	}
	return k.manager.OnChange(func() { k.reresolve(ctx, logger, apply) })
}

func (k *upstreamKey) reresolve(ctx context.Context, logger *slog.Logger, apply func(string) error) {
	value, err := k.manager.ResolveReferences(ctx, k.ref)
	value = strings.TrimSpace(value)
	if err == nil && value == "" {
		err = errors.New("secret reference resolved to an empty value")
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to re-resolve upstream API key, keeping the current key", logging.Err(err))
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if value == k.current {
		return
	}
	if err := apply(value); err != nil {
		logger.ErrorContext(ctx, "failed to apply rotated upstream API key", logging.Err(err))
		return
	}
	k.current = value
	logger.InfoContext(ctx, "upstream API key rotated")
}

func configError(err error) error {
	var verr config.ValidationError
	if errors.As(err, &verr) && len(verr.Errors) == 1 {
		return cli.NewConfigError(verr.Errors[0].Field, verr.Errors[0].Message)
	}
	return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
}

// commandContext returns the command's context, or context.Background when
// the command is invoked outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
