package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"relayhq/azrelay/pkg/cli"
	"relayhq/azrelay/pkg/config"
	sectls "relayhq/azrelay/pkg/security/tls"
	"relayhq/azrelay/pkg/telemetry/logging"
)

var validateFlags struct {
	output string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and the upstream CA bundle",
	Long: `Load the configuration exactly as "run" would, resolve secret references
and parse the upstream CA bundle, then print a summary. The API key is
never printed in full.

Examples:
  # Validate environment configuration
  azrelay validate

  # Validate a config file and print JSON
  azrelay validate --config config.yaml --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.NewCommandError("validate", validateConfig(cmd))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "text", "output format: text, json, yaml")
}

// validateReport is the result of the validate command.
type validateReport struct {
	ListenAddress string                   `json:"listen_address" yaml:"listen_address"`
	TLSEnabled    bool                     `json:"tls_enabled" yaml:"tls_enabled"`
	Endpoint      string                   `json:"endpoint" yaml:"endpoint"`
	Deployment    string                   `json:"deployment" yaml:"deployment"`
	APIVersion    string                   `json:"api_version" yaml:"api_version"`
	APIKey        string                   `json:"api_key" yaml:"api_key"`
	Timeout       string                   `json:"timeout" yaml:"timeout"`
	CABundle      string                   `json:"ca_bundle,omitempty" yaml:"ca_bundle,omitempty"`
	Certificates  []sectls.CertificateInfo `json:"certificates,omitempty" yaml:"certificates,omitempty"`
	Warnings      []string                 `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func (r validateReport) String() string {
	var b strings.Builder
	b.WriteString("✓ Configuration valid\n")
	fmt.Fprintf(&b, "  Listen:      %s (tls: %t)\n", r.ListenAddress, r.TLSEnabled)
	fmt.Fprintf(&b, "  Endpoint:    %s\n", r.Endpoint)
	fmt.Fprintf(&b, "  Deployment:  %s\n", r.Deployment)
	fmt.Fprintf(&b, "  API version: %s\n", r.APIVersion)
	fmt.Fprintf(&b, "  API key:     %s\n", r.APIKey)
	fmt.Fprintf(&b, "  Timeout:     %s\n", r.Timeout)
	if r.CABundle == "" {
		b.WriteString("  CA bundle:   system roots only\n")
	} else {
		fmt.Fprintf(&b, "  CA bundle:   %s (%d certificates)\n", r.CABundle, len(r.Certificates))
		for _, c := range r.Certificates {
			fmt.Fprintf(&b, "    - %s (expires %s)\n", c.Subject, c.NotAfter.Format(time.DateOnly))
		}
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "⚠ %s\n", w)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func validateConfig(cmd *cobra.Command) error {
	format, err := cli.ParseFormat(validateFlags.output)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(commandContext(cmd), cfgFile)
	if err != nil {
		return err
	}

	trust, err := sectls.LoadTrustStore(cfg.Upstream.CABundle)
	if err != nil {
		return cli.NewConfigError("upstream.ca_bundle", err.Error())
	}

	report := newValidateReport(cfg, trust, time.Now())
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report)
}

func newValidateReport(cfg *config.Config, trust *sectls.TrustStore, now time.Time) validateReport {
	report := validateReport{
		ListenAddress: cfg.Server.ListenAddress,
		TLSEnabled:    cfg.Security.TLS.Enabled,
		Endpoint:      cfg.Upstream.Endpoint,
		Deployment:    cfg.Upstream.Deployment,
		APIVersion:    cfg.Upstream.APIVersion,
		APIKey:        logging.RedactAPIKey(cfg.Upstream.APIKey),
		Timeout:       cfg.Upstream.Timeout.String(),
		CABundle:      trust.BundlePath,
		Certificates:  trust.Summary(),
	}

	warnBefore := cfg.Security.Certificates.WarnBefore
	for _, cert := range trust.Bundle {
		switch days := sectls.DaysUntilExpiry(cert, now); {
		case cert.NotAfter.Before(now):
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("CA certificate %q expired %d days ago", cert.Subject.CommonName, -days))
		case cert.NotAfter.Sub(now) < warnBefore:
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("CA certificate %q expires in %d days", cert.Subject.CommonName, days))
		}
	}
	if cfg.Server.WriteTimeout > 0 && cfg.Server.WriteTimeout <= cfg.Upstream.Timeout {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("server.write_timeout (%s) does not exceed upstream.timeout (%s)",
				cfg.Server.WriteTimeout, cfg.Upstream.Timeout))
	}

	return report
}
