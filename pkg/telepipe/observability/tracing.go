package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the telepipe tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("telepipe")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartPublishSpan starts a span for one event publish.
	StartPublishSpan(ctx context.Context, name, category string) (context.Context, trace.Span)

	// StartHandleSpan starts a span for one crash report routing.
	StartHandleSpan(ctx context.Context, reportID, severity string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartPublishSpan starts a span for one event publish.
func (m *otelSpanManager) StartPublishSpan(ctx context.Context, name, category string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "telepipe.publish",
		trace.WithAttributes(
			attribute.String("event.name", name),
			attribute.String("event.category", category),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartHandleSpan starts a span for one crash report routing.
func (m *otelSpanManager) StartHandleSpan(ctx context.Context, reportID, severity string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "telepipe.handle",
		trace.WithAttributes(
			attribute.String("report.id", reportID),
			attribute.String("report.severity", severity),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
