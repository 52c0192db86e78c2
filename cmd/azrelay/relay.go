package main

import (
	"fmt"
	"log/slog"

	"relayhq/azrelay/pkg/cli"
	"relayhq/azrelay/pkg/config"
	"relayhq/azrelay/pkg/providers/azure"
	"relayhq/azrelay/pkg/relay"
	sectls "relayhq/azrelay/pkg/security/tls"
	"relayhq/azrelay/pkg/telemetry/metrics"
	"relayhq/azrelay/pkg/telemetry/tracing"
)

// relayStack is the upstream side of the service: the trust store, the
// Azure provider and the relay service on top of it.
type relayStack struct {
	trust    *sectls.TrustStore
	provider *azure.Provider
	service  *relay.Service
}

func (s *relayStack) Close() error {
	return s.provider.Close()
}

// newRelayStack builds the relay from cfg. collector and tracer may be nil.
func newRelayStack(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector, tracer *tracing.Tracer) (*relayStack, error) {
	trust, err := sectls.LoadTrustStore(cfg.Upstream.CABundle)
	if err != nil {
		return nil, cli.NewConfigError("upstream.ca_bundle", err.Error())
	}

	provider, err := azure.NewProvider(azure.Config{
		Endpoint:   cfg.Upstream.Endpoint,
		APIKey:     cfg.Upstream.APIKey,
		Deployment: cfg.Upstream.Deployment,
		APIVersion: cfg.Upstream.APIVersion,
		Timeout:    cfg.Upstream.Timeout,
		RootCAs:    trust.Pool,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream provider: %w", err)
	}

	opts := []relay.Option{relay.WithLogger(logger), relay.WithTracer(tracer)}
	if collector != nil {
		opts = append(opts, relay.WithMetrics(collector))
	}

	return &relayStack{
		trust:    trust,
		provider: provider,
		service:  relay.NewService(provider, opts...),
	}, nil
}
