package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/converter/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return NewWithProvider(provider), recorder
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if tracer.Enabled() {
		t.Error("disabled tracer reports enabled")
	}

	ctx, span := tracer.Start(context.Background(), "noop")
	span.End()
	if TraceID(ctx) != "" {
		t.Error("noop span should not carry a valid trace id")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestTracer_NilSafe(t *testing.T) {
	var tracer *Tracer
	_, span := tracer.Start(context.Background(), "nil")
	span.End()
	if tracer.Enabled() {
		t.Error("nil tracer reports enabled")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() on nil tracer failed: %v", err)
	}
}

func TestTracer_RecordsSpans(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	ctx, parent := tracer.Start(context.Background(), "source.fetch")
	SetFetchAttributes(parent, "sample", 1, 12)
	if TraceID(ctx) == "" {
		t.Error("expected a valid trace id")
	}

	_, child := tracer.Start(ctx, "export.pdf")
	SetExportAttributes(child, "pdf", 1, 2, 4096)
	End(child, errors.New("render failed"))
	End(parent, nil)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 ended spans, got %d", len(spans))
	}

	exportSpan := spans[0]
	if exportSpan.Name() != "export.pdf" {
		t.Errorf("first ended span = %q, want export.pdf", exportSpan.Name())
	}
	if exportSpan.Status().Code != codes.Error {
		t.Errorf("export span status = %v, want Error", exportSpan.Status().Code)
	}
	if exportSpan.Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("export span should be a child of the fetch span")
	}

	found := false
	for _, kv := range exportSpan.Attributes() {
		if string(kv.Key) == AttrPages && kv.Value.AsInt64() == 2 {
			found = true
		}
	}
	if !found {
		t.Error("expected pages attribute on export span")
	}

	if spans[1].Status().Code != codes.Ok {
		t.Errorf("fetch span status = %v, want Ok", spans[1].Status().Code)
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, "ParentBased{root:AlwaysOnSampler"},
		{0, "ParentBased{root:AlwaysOffSampler"},
		{0.5, "ParentBased{root:TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		desc := newSampler(tt.ratio).Description()
		if len(desc) < len(tt.want) || desc[:len(tt.want)] != tt.want {
			t.Errorf("newSampler(%v) = %q, want prefix %q", tt.ratio, desc, tt.want)
		}
	}
}

func TestPropagation_RoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	tracer, _ := newRecordingTracer(t)
	ctx, span := tracer.Start(context.Background(), "source.fetch")
	defer span.End()

	req := httptest.NewRequest(http.MethodGet, "http://backend.example.com/customers", nil)
	InjectHTTP(ctx, req)
	if req.Header.Get("traceparent") == "" {
		t.Fatal("expected traceparent header")
	}

	extracted := ExtractHTTP(context.Background(), req)
	if got := trace.SpanContextFromContext(extracted).TraceID().String(); got != TraceID(ctx) {
		t.Errorf("extracted trace id = %q, want %q", got, TraceID(ctx))
	}
}
