package sink

import (
	"context"
	"log/slog"

	"github.com/patternlab/telepipe/pkg/telepipe/crash"
	"github.com/patternlab/telepipe/pkg/telepipe/event"
)

// LogSink writes events to a structured logger instead of a backend.
// Useful in development and as the default wiring in examples.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log-backed telemetry sink.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// SendEvent implements TelemetrySink.
func (s *LogSink) SendEvent(_ context.Context, evt event.Event) error {
	attrs := []any{
		slog.String("event", evt.Name()),
		slog.String("category", string(evt.Category())),
		slog.String("event_id", evt.ID()),
	}
	params := evt.Params()
	for _, key := range params.Keys() {
		attrs = append(attrs, slog.Any(key, params[key]))
	}
	s.logger.Info("telemetry event", attrs...)
	return nil
}

// LogReporter writes crash reports to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a log-backed crash reporter.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// ReportCrash implements crash.Reporter.
func (s *LogReporter) ReportCrash(_ context.Context, rep *crash.Report, fatal bool) error {
	s.logger.Error("crash report",
		slog.String("report_id", rep.ID),
		slog.String("severity", rep.Severity.String()),
		slog.String("category", rep.Category.String()),
		slog.Bool("fatal", fatal),
		slog.String("error", rep.Err.Error()),
	)
	return nil
}
