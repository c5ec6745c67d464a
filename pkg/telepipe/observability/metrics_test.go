package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a reader to
// collect from, plus a cleanup function.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
}

func TestRecordPublish(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records publish count and latency", func(t *testing.T) {
		m.RecordPublish(ctx, "game_progress", 5*time.Millisecond, nil)

		rm := collectMetrics(t, reader)

		published := findMetric(rm, "telepipe.events.published")
		require.NotNil(t, published)
		sum, ok := published.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "category" && attr.Value.AsString() == "game_progress" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "Expected datapoint for category=game_progress")

		latency := findMetric(rm, "telepipe.publish.latency_ms")
		require.NotNil(t, latency)
		hist, ok := latency.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("counts sink failures only when send failed", func(t *testing.T) {
		m.RecordPublish(ctx, "performance", time.Millisecond, errors.New("backend down"))

		rm := collectMetrics(t, reader)
		failures := findMetric(rm, "telepipe.sink.failures")
		require.NotNil(t, failures)

		sum, ok := failures.Data.(metricdata.Sum[int64])
		require.True(t, ok)

		var total int64
		for _, dp := range sum.DataPoints {
			total += dp.Value
		}
		assert.Equal(t, int64(1), total)
	})
}

func TestRecordDelivery(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordDelivery(context.Background(), "user_interaction", 3)

	rm := collectMetrics(t, reader)
	delivered := findMetric(rm, "telepipe.events.delivered")
	require.NotNil(t, delivered)

	sum, ok := delivered.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)
}

func TestRecordReport(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordReport(context.Background(), "critical", "critical", 2*time.Millisecond)

	rm := collectMetrics(t, reader)
	require.NotNil(t, findMetric(rm, "telepipe.reports.handled"))
	require.NotNil(t, findMetric(rm, "telepipe.report.latency_ms"))
}

func TestRecordSpooled(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	m.RecordSpooled(context.Background(), "error")

	rm := collectMetrics(t, reader)
	spooled := findMetric(rm, "telepipe.events.spooled")
	require.NotNil(t, spooled)

	sum, ok := spooled.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestNoopMetrics(t *testing.T) {
	// Must be safe without any provider configured.
	var m NoopMetrics
	ctx := context.Background()
	m.RecordPublish(ctx, "x", time.Millisecond, nil)
	m.RecordDelivery(ctx, "x", 1)
	m.RecordReport(ctx, "normal", "general", time.Millisecond)
	m.RecordSpooled(ctx, "x")
}
