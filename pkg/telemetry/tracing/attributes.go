package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys. HTTP keys follow OpenTelemetry semantic conventions;
// relay keys live under the azrelay namespace.
const (
	AttrHTTPStatus = "http.response.status_code"

	AttrProvider       = "azrelay.provider"
	AttrDeployment     = "azrelay.deployment"
	AttrOutcome        = "azrelay.outcome"
	AttrUpstreamStatus = "azrelay.upstream.status_code"
	AttrMessageLength  = "azrelay.message.length"

	AttrTokensPrompt     = "azrelay.tokens.prompt"
	AttrTokensCompletion = "azrelay.tokens.completion"
	AttrTokensTotal      = "azrelay.tokens.total"
)

// SetRelayAttributes records the provider and message size on span. The
// message text itself is never recorded.
func SetRelayAttributes(span trace.Span, provider string, messageLength int) {
	span.SetAttributes(
		attribute.String(AttrProvider, provider),
		attribute.Int(AttrMessageLength, messageLength),
	)
}

// SetTokenAttributes records token usage reported by the upstream.
func SetTokenAttributes(span trace.Span, prompt, completion, total int) {
	span.SetAttributes(
		attribute.Int(AttrTokensPrompt, prompt),
		attribute.Int(AttrTokensCompletion, completion),
		attribute.Int(AttrTokensTotal, total),
	)
}

// SetOutcome records the relay outcome category and, when non-zero, the
// upstream HTTP status.
func SetOutcome(span trace.Span, outcome string, upstreamStatus int) {
	span.SetAttributes(attribute.String(AttrOutcome, outcome))
	if upstreamStatus != 0 {
		span.SetAttributes(attribute.Int(AttrUpstreamStatus, upstreamStatus))
	}
}
