package telepipe_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternlab/telepipe/pkg/telepipe"
	"github.com/patternlab/telepipe/pkg/telepipe/bus"
	"github.com/patternlab/telepipe/pkg/telepipe/config"
	"github.com/patternlab/telepipe/pkg/telepipe/crash"
	pipeerrors "github.com/patternlab/telepipe/pkg/telepipe/errors"
	"github.com/patternlab/telepipe/pkg/telepipe/event"
	"github.com/patternlab/telepipe/pkg/telepipe/sink"
	"github.com/patternlab/telepipe/pkg/telepipe/spool"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(t *testing.T, opts ...telepipe.Option) (*telepipe.Pipeline, *sink.Capture) {
	t.Helper()
	capture := sink.NewCapture()
	opts = append([]telepipe.Option{
		telepipe.WithTelemetrySink(capture),
		telepipe.WithReporter(capture),
		telepipe.WithLogger(discardLogger()),
	}, opts...)

	pipe, err := telepipe.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { pipe.Close() })
	return pipe, capture
}

func TestPublishEndToEnd(t *testing.T) {
	pipe, capture := newTestPipeline(t)
	ctx := context.Background()

	// An implausible study time gets clamped and the event enriched
	// before it reaches observers and the sink.
	evt := event.New("pattern_completed", event.CategoryPatternLearning, event.Params{
		"pattern_name":       "observer",
		"pattern_category":   "behavioral",
		"completed":          true,
		"time_spent_seconds": 9999,
	})

	progress := bus.NewPatternProgress()
	pipe.Bus().Subscribe(progress)

	pipe.Publish(ctx, evt)

	sent := capture.Events()
	require.Len(t, sent, 1)

	v, ok := sent[0].Param("time_spent_seconds")
	require.True(t, ok)
	assert.Equal(t, 3600, v)

	v, ok = sent[0].Param("learning_context")
	require.True(t, ok)
	assert.Equal(t, "design_patterns", v)

	// The observer saw the processed event, not the raw one.
	assert.Equal(t, 1, progress.Completed("observer"))

	// The caller's event value is untouched.
	raw, _ := evt.Param("time_spent_seconds")
	assert.Equal(t, 9999, raw)
}

func TestPublishUnknownCategoryPassesThrough(t *testing.T) {
	pipe, capture := newTestPipeline(t)

	evt := event.New("custom", event.Category("unmapped"), event.Params{"k": "v"})
	pipe.Publish(context.Background(), evt)

	sent := capture.Events()
	require.Len(t, sent, 1)
	assert.Equal(t, evt.Params(), sent[0].Params())
}

func TestPublishSinkFailureIsSwallowed(t *testing.T) {
	failing := sink.TelemetrySinkFunc(func(context.Context, event.Event) error {
		return errors.New("backend down")
	})

	pipe, err := telepipe.New(
		telepipe.WithTelemetrySink(failing),
		telepipe.WithLogger(discardLogger()),
	)
	require.NoError(t, err)
	defer pipe.Close()

	var received int
	pipe.Bus().Subscribe(bus.ObserverFunc(func(event.Event) { received++ }))

	// Publish must not panic or surface the failure; observers still fire.
	pipe.Publish(context.Background(), event.New("tap", event.CategoryUserInteraction, event.Params{
		"element": "card", "action": "tap",
	}))

	assert.Equal(t, 1, received)
}

func TestPublishSinkFailureSpools(t *testing.T) {
	failing := sink.TelemetrySinkFunc(func(context.Context, event.Event) error {
		return errors.New("backend down")
	})
	store := spool.NewMemoryStore()

	pipe, err := telepipe.New(
		telepipe.WithTelemetrySink(failing),
		telepipe.WithSpool(store),
		telepipe.WithLogger(discardLogger()),
	)
	require.NoError(t, err)
	defer pipe.Close()

	evt := event.New("tap", event.CategoryUserInteraction, event.Params{
		"element": "card", "action": "tap",
	}, event.WithID("evt-1"))
	pipe.Publish(context.Background(), evt)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	due, err := store.Due(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "evt-1", due[0].EventID)
}

func TestFlushDrainsSpool(t *testing.T) {
	store := spool.NewMemoryStore()
	capture := sink.NewCapture()

	// Seed the spool as if an earlier send had failed.
	evt := event.New("tap", event.CategoryUserInteraction, nil, event.WithID("evt-1"))
	entry, err := spool.NewEntry(evt, errors.New("was down"))
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), entry))

	pipe, err := telepipe.New(
		telepipe.WithTelemetrySink(capture),
		telepipe.WithSpool(store),
		telepipe.WithLogger(discardLogger()),
	)
	require.NoError(t, err)
	defer pipe.Close()

	pipe.Flush(context.Background())

	assert.Len(t, capture.Events(), 1)
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPublishPreconditionSkipsSend(t *testing.T) {
	pipe, capture := newTestPipeline(t,
		telepipe.WithPrecondition(func(event.Event) error {
			return &pipeerrors.PreconditionError{Precondition: "analytics consent"}
		}),
	)

	var received int
	pipe.Bus().Subscribe(bus.ObserverFunc(func(event.Event) { received++ }))

	pipe.Publish(context.Background(), event.New("tap", event.CategoryUserInteraction, event.Params{
		"element": "card", "action": "tap",
	}))

	// Observers still ran; nothing left the process.
	assert.Equal(t, 1, received)
	assert.Empty(t, capture.Events())
}

func TestHandleRoutesThroughChain(t *testing.T) {
	pipe, capture := newTestPipeline(t)

	pipe.Handle(context.Background(), crash.NewReport(errors.New("tower overflow"),
		crash.WithSeverity(crash.SeverityCritical),
	))

	reports := capture.Reports()
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Fatal)
}

func TestHandleNilReport(t *testing.T) {
	pipe, capture := newTestPipeline(t)
	pipe.Handle(context.Background(), nil)
	assert.Empty(t, capture.Reports())
}

func TestCapture(t *testing.T) {
	pipe, capture := newTestPipeline(t)

	pipe.Capture(context.Background(), nil)
	assert.Empty(t, capture.Reports())

	pipe.Capture(context.Background(), errors.New("path blocked"),
		crash.WithCategory(crash.CategoryGameLogic),
	)
	reports := capture.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, crash.CategoryGameLogic, reports[0].Report.Category)
	assert.False(t, reports[0].Fatal)
}

func TestSettingsExtraRules(t *testing.T) {
	pipe, capture := newTestPipeline(t,
		telepipe.WithSettings(config.Settings{
			Clamp: map[string]config.Bounds{
				"combo": {Min: 0, Max: 50},
			},
			Deny: []string{"device_id"},
		}),
	)

	pipe.Publish(context.Background(), event.New("wave_cleared", event.CategoryGameProgress, event.Params{
		"level":     3,
		"combo":     120,
		"device_id": "abc-123",
	}))

	sent := capture.Events()
	require.Len(t, sent, 1)

	v, _ := sent[0].Param("combo")
	assert.Equal(t, 50, v)
	_, ok := sent[0].Param("device_id")
	assert.False(t, ok)

	// Built-in strategy enrichment still applied.
	v, _ = sent[0].Param("game_mode")
	assert.Equal(t, "tower_defense", v)
}

func TestSettingsScoreWindow(t *testing.T) {
	pipe, _ := newTestPipeline(t,
		telepipe.WithSettings(config.Settings{ScoreWindow: 2}),
	)
	require.NotNil(t, pipe.Scores())

	for _, score := range []int{100, 200, 300} {
		pipe.Publish(context.Background(), event.New("wave_cleared", event.CategoryGameProgress,
			event.Params{"level": 1, "score": score}))
	}

	assert.Equal(t, []float64{200, 300}, pipe.Scores().Scores())
	assert.Equal(t, 250.0, pipe.Scores().Average())
}

func TestSettingsInvalid(t *testing.T) {
	_, err := telepipe.New(
		telepipe.WithSettings(config.Settings{ScoreWindow: -1}),
		telepipe.WithLogger(discardLogger()),
	)
	require.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	pipe, err := telepipe.New(telepipe.WithLogger(discardLogger()))
	require.NoError(t, err)
	defer pipe.Close()

	require.NotNil(t, pipe.Registry())
	require.NotNil(t, pipe.Bus())
	require.NotNil(t, pipe.Chain())
	assert.Nil(t, pipe.Scores())
	assert.Equal(t, 6, pipe.Chain().Len())

	// Publishing against the defaults (noop sink) is safe.
	pipe.Publish(context.Background(), event.New("tap", event.CategoryUserInteraction, event.Params{
		"element": "card", "action": "tap",
	}))
	pipe.Start(context.Background())
	pipe.Flush(context.Background())
}
