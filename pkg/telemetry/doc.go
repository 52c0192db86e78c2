// Package telemetry groups the observability packages used by azrelay.
//
// # Components
//
//   - logging: slog construction with request and trace IDs and secret
//     redaction
//   - metrics: Prometheus collector for relay outcomes, upstream latency,
//     inbound HTTP requests and certificate expiry
//   - tracing: OpenTelemetry tracer exporting over OTLP/gRPC
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, cfg.Upstream.APIKey))
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
// The upstream API key passed to logging.FromConfig is redacted from every
// log attribute, including error strings and upstream response bodies.
package telemetry
