package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"relayhq/azrelay/pkg/providers"
	"relayhq/azrelay/pkg/telemetry/logging"
	"relayhq/azrelay/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/trace"
)

// Recorder receives relay metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordRelay(outcome string)
	RecordUpstreamCall(outcome string, duration time.Duration)
	RecordUpstreamStatus(status int)
	UpdateProviderHealth(provider string, healthy bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordRelay(string)                       {}
func (noopRecorder) RecordUpstreamCall(string, time.Duration) {}
func (noopRecorder) RecordUpstreamStatus(int)                 {}
func (noopRecorder) UpdateProviderHealth(string, bool)        {}

// Service relays one user message to a completion provider and returns the
// first choice's content. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	provider providers.Provider
	metrics  Recorder
	tracer   *tracing.Tracer
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithTracer sets the tracer used for relay spans.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a relay over provider.
func NewService(provider providers.Provider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		metrics:  noopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Relay sends message as a single user turn and returns the reply text.
//
// An empty message fails with ErrNoMessage without contacting the
// provider. Otherwise exactly one upstream attempt is made. Errors keep
// their provider type so Classify can map them; a 200 response with no
// choices is an *InternalError. Each failure is logged once, with a
// message and category attribute unique to its category.
func (s *Service) Relay(ctx context.Context, message string) (reply string, err error) {
	ctx, span := s.tracer.Start(ctx, "relay.message", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	tracing.SetRelayAttributes(span, s.provider.GetName(), len(message))

	defer func() {
		category := Classify(err)
		s.metrics.RecordRelay(category.String())
		tracing.SetOutcome(span, category.String(), UpstreamStatus(err))
		tracing.SetError(span, err)
	}()

	if message == "" {
		s.logger.WarnContext(ctx, "rejected message request",
			"category", CategoryClientInput,
			"reason", ErrNoMessage.Reason,
		)
		return "", ErrNoMessage
	}

	req := &providers.ChatCompletionRequest{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: message}},
	}

	start := time.Now()
	resp, err := s.provider.SendCompletion(ctx, req)
	elapsed := time.Since(start)

	s.metrics.RecordUpstreamCall(Classify(err).String(), elapsed)
	s.metrics.UpdateProviderHealth(s.provider.GetName(), s.provider.IsHealthy())
	if status := UpstreamStatus(err); status != 0 {
		s.metrics.RecordUpstreamStatus(status)
	} else if err == nil {
		s.metrics.RecordUpstreamStatus(http.StatusOK)
	}

	if err != nil {
		s.logFailure(ctx, err, elapsed)
		return "", err
	}

	if len(resp.Choices) == 0 {
		err = &InternalError{Op: "extract reply", Cause: errors.New("upstream response contained no choices")}
		s.logFailure(ctx, err, elapsed)
		return "", err
	}

	if resp.Usage != nil {
		tracing.SetTokenAttributes(span, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	}
	s.logger.DebugContext(ctx, "message relayed",
		"provider", s.provider.GetName(),
		"duration_ms", elapsed.Milliseconds(),
		"finish_reason", resp.Choices[0].FinishReason,
	)

	return resp.Choices[0].Message.Content, nil
}

// logFailure writes the single diagnostic entry for a failed relay.
func (s *Service) logFailure(ctx context.Context, err error, elapsed time.Duration) {
	provider := s.provider.GetName()
	duration := elapsed.Milliseconds()

	switch Classify(err) {
	case CategoryUpstream:
		var upstreamErr *providers.UpstreamError
		errors.As(err, &upstreamErr)
		s.logger.ErrorContext(ctx, "upstream returned non-200 status",
			"category", CategoryUpstream,
			"provider", provider,
			"status", upstreamErr.StatusCode,
			"body", upstreamErr.Body,
			"duration_ms", duration,
		)

	case CategoryTLS:
		s.logger.ErrorContext(ctx, "upstream TLS certificate verification failed",
			"category", CategoryTLS,
			"provider", provider,
			"duration_ms", duration,
			logging.Err(err),
		)

	case CategoryTransport:
		var transportErr *providers.TransportError
		errors.As(err, &transportErr)
		s.logger.ErrorContext(ctx, "upstream request failed",
			"category", CategoryTransport,
			"provider", provider,
			"timeout", transportErr.Timeout(),
			"duration_ms", duration,
			logging.Err(err),
		)

	default:
		attrs := []any{
			"category", CategoryInternal,
			"provider", provider,
			"duration_ms", duration,
			logging.Err(err),
		}
		var parseErr *providers.ParseError
		if errors.As(err, &parseErr) {
			attrs = append(attrs, "raw_response", parseErr.RawResponse)
		}
		s.logger.ErrorContext(ctx, "internal error relaying message", attrs...)
	}
}
