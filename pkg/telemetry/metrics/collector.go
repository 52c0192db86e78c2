package metrics

import (
	"strconv"
	"time"

	"relayhq/azrelay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns the Prometheus registry and every metric azrelay exports.
// All Record methods are safe for concurrent use and are no-ops when
// metrics are disabled or the Collector is nil.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	relayMetrics *RelayMetrics
	httpMetrics  *HTTPMetrics
	certMetrics  *CertificateMetrics
}

// NewCollector creates a collector and registers its metrics. If registry
// is nil a new one is created; Go runtime and process collectors are
// registered alongside the relay metrics.
//
// Example:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets
	}

	return &Collector{
		config:       cfg,
		registry:     registry,
		relayMetrics: NewRelayMetrics(&cfg, registry),
		httpMetrics:  NewHTTPMetrics(&cfg, registry),
		certMetrics:  NewCertificateMetrics(&cfg, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRelay counts one relayed message by outcome ("success",
// "client_input", "upstream", "transport", "tls", "internal").
func (c *Collector) RecordRelay(outcome string) {
	if !c.enabled() {
		return
	}
	c.relayMetrics.requestsTotal.WithLabelValues(outcome).Inc()
}

// RecordUpstreamCall records the latency of one upstream attempt.
func (c *Collector) RecordUpstreamCall(outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.relayMetrics.upstreamDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordUpstreamStatus counts an HTTP status returned by the upstream.
func (c *Collector) RecordUpstreamStatus(status int) {
	if !c.enabled() {
		return
	}
	c.relayMetrics.upstreamResponses.WithLabelValues(strconv.Itoa(status)).Inc()
}

// UpdateProviderHealth sets the provider health gauge (1=healthy, 0=unhealthy).
func (c *Collector) UpdateProviderHealth(provider string, healthy bool) {
	if !c.enabled() {
		return
	}
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.relayMetrics.providerHealthy.WithLabelValues(provider).Set(value)
}

// RecordHTTPRequest records one inbound request. route should be the
// matched mux pattern, not the raw path, to keep cardinality bounded.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.httpMetrics.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpMetrics.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// SetCertificateExpiry publishes the NotAfter time of a watched certificate.
func (c *Collector) SetCertificateExpiry(name string, notAfter time.Time) {
	if !c.enabled() {
		return
	}
	c.certMetrics.expiry.WithLabelValues(name).Set(float64(notAfter.Unix()))
}
