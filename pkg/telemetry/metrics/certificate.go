package metrics

import (
	"relayhq/azrelay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CertificateMetrics tracks the certificates azrelay serves or trusts.
type CertificateMetrics struct {
	expiry *prometheus.GaugeVec
}

// NewCertificateMetrics creates and registers certificate metrics.
func NewCertificateMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CertificateMetrics {
	m := &CertificateMetrics{
		expiry: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "tls",
				Name:      "certificate_expiry_timestamp_seconds",
				Help:      "NotAfter of watched certificates as a Unix timestamp",
			},
			[]string{"name"},
		),
	}

	registry.MustRegister(m.expiry)
	return m
}
