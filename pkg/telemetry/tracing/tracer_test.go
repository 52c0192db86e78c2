package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"relayhq/azrelay/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewWithProvider(tp), recorder
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(context.Background(), config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("Enabled() = true, want false")
	}

	_, span := tracer.Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a valid span context")
	}
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_InvalidSampler(t *testing.T) {
	_, err := New(context.Background(), config.TracingConfig{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		ServiceName: "azrelay",
		Sampler:     "sometimes",
	}, "test")
	if err == nil {
		t.Fatal("New() error = nil, want sampler error")
	}
}

func TestNilTracer(t *testing.T) {
	var tracer *Tracer
	ctx, span := tracer.Start(context.Background(), "nil")
	span.End()
	if ctx == nil {
		t.Fatal("Start() returned nil context")
	}
	if tracer.Enabled() {
		t.Error("nil tracer reports enabled")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 1, false},
		{SamplerNever, 1, false},
		{SamplerRatio, 0.25, false},
		{SamplerParentBased, 0.5, false},
		{"", 1, false},
		{SamplerRatio, 1.5, true},
		{SamplerParentBased, -0.1, true},
		{"sometimes", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			_, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Errorf("createSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
			}
		})
	}
}

func TestSetErrorAndOutcome(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), "relay.message")
	SetOutcome(span, "upstream", 429)
	SetError(span, errors.New("provider returned status 429"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	got := spans[0]
	if got.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status().Code)
	}

	attrs := map[string]any{}
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	if attrs[AttrOutcome] != "upstream" {
		t.Errorf("%s = %v", AttrOutcome, attrs[AttrOutcome])
	}
	if attrs[AttrUpstreamStatus] != int64(429) {
		t.Errorf("%s = %v", AttrUpstreamStatus, attrs[AttrUpstreamStatus])
	}
}

func TestTraceID(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID(empty) = %q", got)
	}

	tracer, _ := newRecordingTracer(t)
	ctx, span := tracer.Start(context.Background(), "op")
	defer span.End()
	if got := TraceID(ctx); len(got) != 32 {
		t.Errorf("TraceID() = %q, want 32 hex chars", got)
	}
}

func TestMiddleware(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tracer, recorder := newRecordingTracer(t)

	var innerTraceID string
	handler := tracer.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		innerTraceID = TraceID(r.Context())
		w.WriteHeader(http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	const wantTrace = "4bf92f3577b34da6a3ce929d0e0e4736"
	if innerTraceID != wantTrace {
		t.Errorf("handler trace ID = %q, want %q", innerTraceID, wantTrace)
	}
	if got := rec.Header().Get("X-Trace-ID"); got != wantTrace {
		t.Errorf("X-Trace-ID = %q, want %q", got, wantTrace)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != "HTTP POST" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("5xx response should mark span as error, got %v", spans[0].Status().Code)
	}
}

func TestMiddleware_Disabled(t *testing.T) {
	tracer, _ := New(context.Background(), config.TracingConfig{}, "test")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	tracer.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Trace-ID") != "" {
		t.Error("disabled tracer set X-Trace-ID")
	}
}
