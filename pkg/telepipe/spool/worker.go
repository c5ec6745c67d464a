package spool

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/patternlab/telepipe/pkg/telepipe/errors"
	"github.com/patternlab/telepipe/pkg/telepipe/sink"
)

// WorkerConfig configures the flush worker.
type WorkerConfig struct {
	// BatchSize is the number of entries resent per poll.
	// Default: 10
	BatchSize int

	// PollInterval is how often the store is checked for due entries.
	// Default: 30 seconds
	PollInterval time.Duration

	// MaxAttempts drops an entry after this many failed resends.
	// Default: 8
	MaxAttempts int

	// Backoff schedules the delay between resend attempts.
	Backoff errors.Backoff

	// Logger records resend outcomes. Defaults to slog.Default().
	Logger *slog.Logger

	// OnDrop is called when an entry exhausts MaxAttempts. Optional.
	OnDrop func(*Entry)
}

// DefaultWorkerConfig provides reasonable defaults.
var DefaultWorkerConfig = WorkerConfig{
	BatchSize:    10,
	PollInterval: 30 * time.Second,
	MaxAttempts:  8,
	Backoff:      errors.DefaultBackoff,
}

// Worker drains the spool back into the telemetry sink with capped
// exponential backoff between attempts per entry.
type Worker struct {
	store     Store
	telemetry sink.TelemetrySink
	cfg       WorkerConfig

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
}

// NewWorker creates a flush worker.
func NewWorker(store Store, telemetry sink.TelemetrySink, cfg WorkerConfig) *Worker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultWorkerConfig.BatchSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultWorkerConfig.PollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultWorkerConfig.MaxAttempts
	}
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = DefaultWorkerConfig.Backoff
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Worker{
		store:     store,
		telemetry: telemetry,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
	}
}

// Start begins polling in a background goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop halts the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Flush resends one batch of due entries immediately. It is called by the
// polling loop and may also be called directly, e.g. on shutdown.
func (w *Worker) Flush(ctx context.Context) {
	entries, err := w.store.Due(ctx, w.cfg.BatchSize)
	if err != nil {
		w.cfg.Logger.Warn("spool read failed", slog.String("error", err.Error()))
		return
	}

	for _, e := range entries {
		w.resend(ctx, e)
	}
}

func (w *Worker) resend(ctx context.Context, e *Entry) {
	evt, err := e.Event()
	if err != nil {
		// Undecodable entries can never succeed; drop them.
		w.cfg.Logger.Warn("dropping undecodable spool entry",
			slog.String("event_id", e.EventID),
			slog.String("error", err.Error()),
		)
		_ = w.store.Ack(ctx, e.EventID)
		return
	}

	if sendErr := w.telemetry.SendEvent(ctx, evt); sendErr != nil {
		if e.Attempts+1 >= w.cfg.MaxAttempts {
			w.cfg.Logger.Warn("dropping spool entry after max attempts",
				slog.String("event_id", e.EventID),
				slog.Int("attempts", e.Attempts+1),
				slog.String("error", sendErr.Error()),
			)
			_ = w.store.Ack(ctx, e.EventID)
			if w.cfg.OnDrop != nil {
				w.cfg.OnDrop(e)
			}
			return
		}

		next := time.Now().Add(w.cfg.Backoff.Delay(e.Attempts + 1))
		if failErr := w.store.Fail(ctx, e.EventID, next, sendErr.Error()); failErr != nil {
			w.cfg.Logger.Warn("spool reschedule failed",
				slog.String("event_id", e.EventID),
				slog.String("error", failErr.Error()),
			)
		}
		return
	}

	if ackErr := w.store.Ack(ctx, e.EventID); ackErr != nil {
		w.cfg.Logger.Warn("spool ack failed",
			slog.String("event_id", e.EventID),
			slog.String("error", ackErr.Error()),
		)
	}
}
