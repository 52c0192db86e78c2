package metrics

import (
	"relayhq/azrelay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RelayMetrics contains metrics for the message relay and its upstream.
type RelayMetrics struct {
	requestsTotal     *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	upstreamResponses *prometheus.CounterVec
	providerHealthy   *prometheus.GaugeVec
}

// NewRelayMetrics creates and registers relay metrics.
func NewRelayMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RelayMetrics {
	m := &RelayMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of relayed messages by outcome",
			},
			[]string{"outcome"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_duration_seconds",
				Help:      "Latency of upstream chat completion calls",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"outcome"},
		),
		upstreamResponses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_responses_total",
				Help:      "Upstream HTTP responses by status code",
			},
			[]string{"status"},
		),
		providerHealthy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_healthy",
				Help:      "Provider reachability (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.upstreamDuration,
		m.upstreamResponses,
		m.providerHealthy,
	)

	return m
}
