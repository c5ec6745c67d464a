package sink_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternlab/telepipe/pkg/telepipe/crash"
	"github.com/patternlab/telepipe/pkg/telepipe/event"
	"github.com/patternlab/telepipe/pkg/telepipe/sink"
)

func TestTelemetrySinkFunc(t *testing.T) {
	var got event.Event
	s := sink.TelemetrySinkFunc(func(_ context.Context, evt event.Event) error {
		got = evt
		return nil
	})

	evt := event.New("tap", event.CategoryUserInteraction, nil)
	require.NoError(t, s.SendEvent(context.Background(), evt))
	assert.Equal(t, evt.ID(), got.ID())
}

func TestCapture(t *testing.T) {
	c := sink.NewCapture()

	evt := event.New("tap", event.CategoryUserInteraction, nil)
	require.NoError(t, c.SendEvent(context.Background(), evt))

	rep := crash.NewReport(errors.New("boom"), crash.WithSeverity(crash.SeverityCritical))
	require.NoError(t, c.ReportCrash(context.Background(), rep, true))

	events := c.Events()
	require.Len(t, events, 1)
	assert.Equal(t, evt.ID(), events[0].ID())

	reports := c.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, rep.ID, reports[0].Report.ID)
	assert.True(t, reports[0].Fatal)

	c.Reset()
	assert.Empty(t, c.Events())
	assert.Empty(t, c.Reports())
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := sink.NewLogSink(logger)
	evt := event.New("wave_cleared", event.CategoryGameProgress, event.Params{"score": 42})
	require.NoError(t, s.SendEvent(context.Background(), evt))

	out := buf.String()
	assert.Contains(t, out, "telemetry event")
	assert.Contains(t, out, "wave_cleared")
	assert.Contains(t, out, "score=42")
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := sink.NewLogReporter(logger)
	rep := crash.NewReport(errors.New("tower out of bounds"),
		crash.WithCategory(crash.CategoryGameLogic))
	require.NoError(t, r.ReportCrash(context.Background(), rep, false))

	out := buf.String()
	assert.Contains(t, out, "crash report")
	assert.Contains(t, out, "game_logic")
	assert.Contains(t, out, rep.ID)
}

func TestNoop(t *testing.T) {
	var n sink.Noop
	require.NoError(t, n.SendEvent(context.Background(), event.New("x", event.CategoryError, nil)))
	require.NoError(t, n.ReportCrash(context.Background(), crash.NewReport(errors.New("x")), true))
}
