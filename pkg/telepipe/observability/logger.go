// Package observability provides structured logging, metrics, and tracing
// for the telemetry pipeline.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds pipeline context to a logger.
// Returns a new logger with event_id and category fields.
func EnrichLogger(logger *slog.Logger, eventID, category string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_id", eventID),
		slog.String("category", category),
	)
}

// LogPublish logs the start of an event publish.
func LogPublish(logger *slog.Logger, name, category string) {
	if logger == nil {
		return
	}
	logger.Debug("publishing event",
		slog.String("event", name),
		slog.String("category", category),
	)
}

// LogDelivered logs completed fan-out for one publish.
func LogDelivered(logger *slog.Logger, name string, observers int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event delivered",
		slog.String("event", name),
		slog.Int("observers", observers),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSinkFailure logs an outbound sink failure (non-fatal).
func LogSinkFailure(logger *slog.Logger, sinkName string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("sink call failed",
		slog.String("sink", sinkName),
		slog.String("error", err.Error()),
	)
}

// LogSendSkipped logs a telemetry send skipped by a precondition.
func LogSendSkipped(logger *slog.Logger, name, reason string) {
	if logger == nil {
		return
	}
	logger.Debug("telemetry send skipped",
		slog.String("event", name),
		slog.String("reason", reason),
	)
}

// LogReportHandled logs a crash report routed to its handler.
func LogReportHandled(logger *slog.Logger, reportID, handler string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("report handled",
		slog.String("report_id", reportID),
		slog.String("handler", handler),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSpooled logs an event written to the spool after a failed send.
func LogSpooled(logger *slog.Logger, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Info("event spooled for resend",
		slog.String("event_id", eventID),
		slog.String("send_error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
