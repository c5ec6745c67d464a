package spool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternlab/telepipe/pkg/telepipe/event"
	"github.com/patternlab/telepipe/pkg/telepipe/spool"
)

func TestNewEntryRoundTrip(t *testing.T) {
	evt := event.New("wave_cleared", event.CategoryGameProgress, event.Params{
		"level": 3,
		"mode":  "campaign",
	}, event.WithID("evt-1"))

	entry, err := spool.NewEntry(evt, errors.New("backend down"))
	require.NoError(t, err)

	assert.Equal(t, "evt-1", entry.EventID)
	assert.Equal(t, "wave_cleared", entry.Name)
	assert.Equal(t, "game_progress", entry.Category)
	assert.Equal(t, 0, entry.Attempts)
	assert.Equal(t, "backend down", entry.LastError)

	restored, err := entry.Event()
	require.NoError(t, err)
	assert.Equal(t, "evt-1", restored.ID())
	assert.Equal(t, event.CategoryGameProgress, restored.Category())

	// JSON round-trips ints as float64; the value survives numerically.
	v, ok := restored.Params().Number("level")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	s, ok := restored.Params().String("mode")
	require.True(t, ok)
	assert.Equal(t, "campaign", s)
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := spool.NewMemoryStore()

	evt := event.New("tap", event.CategoryUserInteraction, nil, event.WithID("evt-1"))
	entry, err := spool.NewEntry(evt, errors.New("down"))
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, entry))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	due, err := store.Due(ctx, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "evt-1", due[0].EventID)

	require.NoError(t, store.Ack(ctx, "evt-1"))

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryStoreFailReschedules(t *testing.T) {
	ctx := context.Background()
	store := spool.NewMemoryStore()

	evt := event.New("tap", event.CategoryUserInteraction, nil, event.WithID("evt-1"))
	entry, err := spool.NewEntry(evt, errors.New("down"))
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, entry))

	future := time.Now().Add(time.Hour)
	require.NoError(t, store.Fail(ctx, "evt-1", future, "still down"))

	// Rescheduled into the future: not due anymore.
	due, err := store.Due(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := spool.NewMemoryStore()

	assert.ErrorIs(t, store.Ack(ctx, "missing"), spool.ErrNotFound)
	assert.ErrorIs(t, store.Fail(ctx, "missing", time.Now(), "x"), spool.ErrNotFound)
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	store := spool.NewMemoryStore()
	require.NoError(t, store.Close())

	evt := event.New("tap", event.CategoryUserInteraction, nil)
	entry, err := spool.NewEntry(evt, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Put(ctx, entry), spool.ErrClosed)
	_, err = store.Due(ctx, 10)
	assert.ErrorIs(t, err, spool.ErrClosed)
	_, err = store.Count(ctx)
	assert.ErrorIs(t, err, spool.ErrClosed)
	assert.ErrorIs(t, store.Ack(ctx, "x"), spool.ErrClosed)
}
