package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records pipeline metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records one publish with its duration and whether
	// the outbound send failed.
	RecordPublish(ctx context.Context, category string, duration time.Duration, sendErr error)

	// RecordDelivery records fan-out to observers for one event.
	RecordDelivery(ctx context.Context, category string, observers int)

	// RecordReport records a crash report routed to a handler.
	RecordReport(ctx context.Context, severity, handler string, duration time.Duration)

	// RecordSpooled records an event written to the spool.
	RecordSpooled(ctx context.Context, category string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	published      metric.Int64Counter
	publishLatency metric.Float64Histogram
	sinkFailures   metric.Int64Counter
	delivered      metric.Int64Counter
	reports        metric.Int64Counter
	reportLatency  metric.Float64Histogram
	spooled        metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("telepipe")

	published, err := meter.Int64Counter("telepipe.events.published",
		metric.WithDescription("Number of events published"),
	)
	if err != nil {
		return nil, err
	}

	publishLatency, err := meter.Float64Histogram("telepipe.publish.latency_ms",
		metric.WithDescription("Publish latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	sinkFailures, err := meter.Int64Counter("telepipe.sink.failures",
		metric.WithDescription("Number of failed outbound sink calls"),
	)
	if err != nil {
		return nil, err
	}

	delivered, err := meter.Int64Counter("telepipe.events.delivered",
		metric.WithDescription("Number of observer deliveries"),
	)
	if err != nil {
		return nil, err
	}

	reports, err := meter.Int64Counter("telepipe.reports.handled",
		metric.WithDescription("Number of crash reports handled"),
	)
	if err != nil {
		return nil, err
	}

	reportLatency, err := meter.Float64Histogram("telepipe.report.latency_ms",
		metric.WithDescription("Report handling latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	spooled, err := meter.Int64Counter("telepipe.events.spooled",
		metric.WithDescription("Number of events spooled after failed sends"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		published:      published,
		publishLatency: publishLatency,
		sinkFailures:   sinkFailures,
		delivered:      delivered,
		reports:        reports,
		reportLatency:  reportLatency,
		spooled:        spooled,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordPublish records one publish.
func (m *otelMetrics) RecordPublish(ctx context.Context, category string, duration time.Duration, sendErr error) {
	attrs := []attribute.KeyValue{
		attribute.String("category", category),
	}

	m.published.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.publishLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if sendErr != nil {
		m.sinkFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordDelivery records observer fan-out.
func (m *otelMetrics) RecordDelivery(ctx context.Context, category string, observers int) {
	m.delivered.Add(ctx, int64(observers), metric.WithAttributes(
		attribute.String("category", category),
	))
}

// RecordReport records a handled crash report.
func (m *otelMetrics) RecordReport(ctx context.Context, severity, handler string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("severity", severity),
		attribute.String("handler", handler),
	}
	m.reports.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.reportLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordSpooled records an event written to the spool.
func (m *otelMetrics) RecordSpooled(ctx context.Context, category string) {
	m.spooled.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
	))
}
