package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnrichLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	enriched := EnrichLogger(logger, "evt-1", "game_progress")
	enriched.Info("test")

	out := buf.String()
	assert.Contains(t, out, "event_id=evt-1")
	assert.Contains(t, out, "category=game_progress")
}

func TestEnrichLoggerNil(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "evt-1", "x"))
}

func TestLogHelpersNilSafe(t *testing.T) {
	// Every helper must tolerate a nil logger.
	LogPublish(nil, "x", "y")
	LogDelivered(nil, "x", 1, 0.5)
	LogSinkFailure(nil, "telemetry", errors.New("down"))
	LogSendSkipped(nil, "x", "consent withdrawn")
	LogReportHandled(nil, "rep-1", "general", 0.5)
	LogSpooled(nil, "evt-1", errors.New("down"))
}

func TestLogSinkFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogSinkFailure(logger, "telemetry", errors.New("connection refused"))

	out := buf.String()
	assert.Contains(t, out, "sink call failed")
	assert.Contains(t, out, "sink=telemetry")
	assert.Contains(t, out, "connection refused")
}

func TestLogSendSkipped(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogSendSkipped(logger, "pattern_completed", "consent withdrawn")

	out := buf.String()
	assert.Contains(t, out, "telemetry send skipped")
	assert.Contains(t, out, "consent withdrawn")
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(2 * time.Millisecond)
	elapsed := done()

	assert.GreaterOrEqual(t, elapsed, 1.0)
	assert.Less(t, elapsed, 1000.0)
}
