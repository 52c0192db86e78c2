// Package tracing provides OpenTelemetry tracing for azrelay.
//
// When telemetry.tracing.enabled is false, New returns a Tracer whose spans
// are no-ops and whose Middleware returns the wrapped handler unchanged.
// When enabled, spans are batched to an OTLP gRPC collector.
//
// Inbound requests get a server span via Tracer.Middleware, which honours
// an incoming traceparent header. The relay service opens a child span per
// message and records the outcome category, the upstream status and token
// usage. Message text and the API key are never recorded as attributes.
//
//	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing, version)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(context.Background())
package tracing
