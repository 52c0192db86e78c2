package main

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"relayhq/azrelay/pkg/cli"
	"relayhq/azrelay/pkg/config"
	sectls "relayhq/azrelay/pkg/security/tls"
	"relayhq/azrelay/pkg/server"
	"relayhq/azrelay/pkg/telemetry/health"
	"relayhq/azrelay/pkg/telemetry/logging"
	"relayhq/azrelay/pkg/telemetry/metrics"
	"relayhq/azrelay/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay server",
	Long: `Start the relay server.

The server serves the chat page on /, relays POST /api/messages to the
configured Azure OpenAI deployment and exposes health and metrics endpoints.

Examples:
  # Configure from the environment
  azrelay run

  # Start with a config file
  azrelay run --config /etc/azrelay/config.yaml

  # Override listen address
  azrelay run --listen 0.0.0.0:8080

  # Validate config without starting server
  azrelay run --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.NewCommandError("run", runServer(cmd))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command) error {
	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	cfg, key, err := loadConfigWithKey(ctx, cfgFile)
	if err != nil {
		return err
	}
	defer key.Close()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return configError(err)
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cfg.Upstream.APIKey))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	fmt.Fprintf(out, "azrelay v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "Loading configuration from: %s\n", cfgFile)
	}

	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", logging.Err(err))
		}
	}()

	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)

	stack, err := newRelayStack(cfg, logger, collector, tracer)
	if err != nil {
		return err
	}
	defer stack.Close()
	fmt.Fprintf(out, "✓ Upstream %s (deployment %s)\n", cfg.Upstream.Endpoint, cfg.Upstream.Deployment)

	if key.follow(ctx, logger, rotateAPIKey(logger, stack)) {
		logger.Info("watching secrets for upstream API key rotation")
	}

	monitor := sectls.NewExpiryMonitor(
		cfg.Security.Certificates.CheckSchedule,
		cfg.Security.Certificates.WarnBefore,
		collector,
		logger,
	)
	if len(stack.trust.Bundle) > 0 {
		monitor.AddCertificates("upstream_ca", stack.trust.Bundle)
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithMetrics(collector),
		server.WithTracer(tracer),
	}

	if cfg.Security.TLS.Enabled {
		source, reloader, err := serverCertificates(cfg.Security.TLS, logger, func(*x509.Certificate) { monitor.Scan() })
		if err != nil {
			return err
		}
		monitor.AddSource("server", source)
		if reloader != nil {
			opts = append(opts, server.WithCertificateReloader(reloader))
		}
	}

	checker := health.New(0)
	checker.RegisterCheck("upstream", health.ProviderCheck(stack.provider))
	checker.RegisterCheck("certificates", monitor.Check)
	opts = append(opts, server.WithHealth(checker, health.NewVersionInfo(Version, GitCommit, BuildDate)))

	if err := monitor.Start(ctx); err != nil {
		return cli.NewConfigError("security.certificates.check_schedule", err.Error())
	}
	defer monitor.Stop()

	srv := server.NewServer(cfg, stack.service, opts...)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server",
			"address", cfg.Server.ListenAddress,
			"tls_enabled", cfg.Security.TLS.Enabled,
		)
		errChan <- srv.Start(ctx)
	}()

	select {
	case <-srv.Ready():
	case err := <-errChan:
		return err
	}

	scheme := "http"
	if cfg.Security.TLS.Enabled {
		scheme = "https"
	}
	fmt.Fprintf(out, "\n✓ Server listening on %s://%s\n", scheme, srv.Addr())
	fmt.Fprintf(out, "✓ Health endpoint: %s://%s/health\n", scheme, srv.Addr())
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: %s://%s%s\n", scheme, srv.Addr(), cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Start shuts down gracefully when ctx is canceled by a signal.
	if err := <-errChan; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// rotateAPIKey returns the callback that installs a rotated upstream key.
// The key is registered for redaction before any request can carry it.
func rotateAPIKey(logger *slog.Logger, stack *relayStack) func(string) error {
	return func(value string) error {
		logging.AddSecret(logger, value)
		return stack.provider.SetAPIKey(value)
	}
}

// serverCertificates returns the certificate source for the expiry
// monitor and, when reloading is enabled, the reloader that owns the
// listener certificate. onReload runs after every successful load,
// including the first one when the server starts the reloader.
func serverCertificates(cfg config.TLSConfig, logger *slog.Logger, onReload func(*x509.Certificate)) (sectls.CertificateSource, *sectls.CertificateReloader, error) {
	if cfg.Reload {
		reloader := sectls.NewCertificateReloader(cfg.CertFile, cfg.KeyFile,
			sectls.WithReloadLogger(logger),
			sectls.WithOnReload(onReload),
		)
		return func() []*x509.Certificate {
			if leaf := reloader.Leaf(); leaf != nil {
				return []*x509.Certificate{leaf}
			}
			return nil
		}, reloader, nil
	}

	data, err := os.ReadFile(cfg.CertFile)
	if err != nil {
		return nil, nil, cli.NewConfigError("security.tls.cert_file", err.Error())
	}
	certs, err := sectls.ParsePEMCertificates(data)
	if err != nil {
		return nil, nil, cli.NewConfigError("security.tls.cert_file", err.Error())
	}
	return func() []*x509.Certificate { return certs[:1] }, nil, nil
}
