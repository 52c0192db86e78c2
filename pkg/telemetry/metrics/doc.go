// Package metrics provides Prometheus metrics for azrelay.
//
// # Metrics
//
//   - azrelay_relay_requests_total{outcome}: relayed messages by outcome
//   - azrelay_relay_upstream_duration_seconds{outcome}: upstream latency
//   - azrelay_relay_upstream_responses_total{status}: upstream HTTP statuses
//   - azrelay_relay_provider_healthy{provider}: provider reachability
//   - azrelay_http_requests_total{route,method,status}: inbound requests
//   - azrelay_http_request_duration_seconds{route}: inbound latency
//   - azrelay_tls_certificate_expiry_timestamp_seconds{name}: cert NotAfter
//
// Outcome labels are "success", "client_input", "upstream", "transport",
// "tls" and "internal".
//
// # Usage
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	collector.RecordRelay("success")
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// When metrics are disabled every Record method is a no-op and Middleware
// returns the wrapped handler unchanged.
package metrics
