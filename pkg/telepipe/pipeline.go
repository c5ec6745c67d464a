package telepipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/patternlab/telepipe/pkg/telepipe/bus"
	"github.com/patternlab/telepipe/pkg/telepipe/config"
	"github.com/patternlab/telepipe/pkg/telepipe/crash"
	"github.com/patternlab/telepipe/pkg/telepipe/errors"
	"github.com/patternlab/telepipe/pkg/telepipe/event"
	"github.com/patternlab/telepipe/pkg/telepipe/observability"
	"github.com/patternlab/telepipe/pkg/telepipe/sink"
	"github.com/patternlab/telepipe/pkg/telepipe/spool"
	"github.com/patternlab/telepipe/pkg/telepipe/strategy"
)

// Pipeline composes the event model, the strategy registry, the observer
// bus, the crash handler chain, and the outbound sinks into one entry
// point. Every collaborator is injected; the zero configuration publishes
// to a no-op sink with the built-in strategies and the default chain.
//
// Publish and Handle never return errors: sink failures are logged,
// counted, and (when a spool is configured) buffered for resend.
type Pipeline struct {
	registry  *strategy.Registry
	bus       *bus.Bus
	chain     *crash.Chain
	telemetry sink.TelemetrySink
	reporter  crash.Reporter

	// rules holds deployment-level clamp and deny overrides applied on
	// top of each strategy's own rules.
	rules    strategy.FilterRules
	hasRules bool

	store  spool.Store
	worker *spool.Worker
	scores *bus.ScoreWindow

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	precondition func(event.Event) error

	settings *config.Settings
}

// New builds a pipeline from the given options. It fails only on
// configuration errors, e.g. an invalid Settings block or an unopenable
// spool path.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		logger:    slog.Default(),
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
		telemetry: sink.Noop{},
		reporter:  sink.Noop{},
	}
	for _, opt := range opts {
		opt(p)
	}

	workerCfg := spool.DefaultWorkerConfig
	workerCfg.Logger = p.logger

	scoreWindow := 0
	if p.settings != nil {
		if err := p.settings.Validate(); err != nil {
			return nil, fmt.Errorf("invalid settings: %w", err)
		}

		if len(p.settings.Clamp) > 0 || len(p.settings.Deny) > 0 {
			rules := strategy.FilterRules{
				Clamp: make(map[string]strategy.ClampRule, len(p.settings.Clamp)),
				Deny:  append([]string(nil), p.settings.Deny...),
			}
			for key, b := range p.settings.Clamp {
				rules.Clamp[key] = strategy.ClampRule{Min: b.Min, Max: b.Max}
			}
			p.rules = rules
			p.hasRules = true
		}

		if p.settings.SpoolPollInterval > 0 {
			workerCfg.PollInterval = p.settings.SpoolPollInterval.Std()
		}
		if p.settings.SpoolMaxAttempts > 0 {
			workerCfg.MaxAttempts = p.settings.SpoolMaxAttempts
		}
		if p.store == nil && p.settings.SpoolPath != "" {
			store, err := spool.NewSQLiteStore(p.settings.SpoolPath)
			if err != nil {
				return nil, fmt.Errorf("open spool: %w", err)
			}
			p.store = store
		}
		scoreWindow = p.settings.ScoreWindow
	}

	if p.registry == nil {
		p.registry = strategy.NewDefaultRegistry(p.logger)
	}
	if p.bus == nil {
		p.bus = bus.New(bus.Config{Logger: p.logger})
	}
	if p.chain == nil {
		p.chain = crash.NewDefaultChain(p.reporter, p.logger)
	}
	if p.store != nil {
		p.worker = spool.NewWorker(p.store, p.telemetry, workerCfg)
	}
	if scoreWindow > 0 {
		p.scores = bus.NewScoreWindow(scoreWindow)
		p.bus.Subscribe(p.scores)
	}

	return p, nil
}

// Publish runs an event through its category strategy, fans it out to
// the observers, and forwards it to the telemetry sink. It never fails:
// a sink error is logged, recorded, and spooled when a spool is
// configured, then swallowed.
func (p *Pipeline) Publish(ctx context.Context, evt event.Event) {
	start := time.Now()
	category := string(evt.Category())

	ctx, span := p.spans.StartPublishSpan(ctx, evt.Name(), category)
	observability.LogPublish(p.logger, evt.Name(), category)

	processed := p.registry.Process(evt)
	if p.hasRules {
		processed = processed.WithParams(p.rules.Apply(processed.Params()))
	}

	p.bus.Publish(processed)
	observers := p.bus.Len()
	p.metrics.RecordDelivery(ctx, category, observers)
	observability.LogDelivered(p.logger, processed.Name(), observers,
		float64(time.Since(start).Microseconds())/1000.0)

	sendErr := p.send(ctx, processed)
	p.metrics.RecordPublish(ctx, category, time.Since(start), sendErr)
	p.spans.EndSpanWithError(span, sendErr)
}

// send forwards the processed event to the telemetry sink, honoring the
// precondition check. The returned error is for metrics and tracing
// only; Publish never surfaces it.
func (p *Pipeline) send(ctx context.Context, evt event.Event) error {
	if p.precondition != nil {
		if err := p.precondition(evt); err != nil {
			observability.LogSendSkipped(p.logger, evt.Name(), err.Error())
			p.spans.AddSpanEvent(ctx, "send.skipped",
				attribute.String("reason", err.Error()))
			return nil
		}
	}

	err := p.telemetry.SendEvent(ctx, evt)
	if err == nil {
		return nil
	}

	observability.LogSinkFailure(p.logger, "telemetry", err)
	p.spoolEvent(ctx, evt, err)
	return &errors.SinkError{Sink: "telemetry", Err: err}
}

// spoolEvent buffers an event whose send failed. Spool failures are
// themselves logged and swallowed.
func (p *Pipeline) spoolEvent(ctx context.Context, evt event.Event, sendErr error) {
	if p.store == nil {
		return
	}

	entry, err := spool.NewEntry(evt, sendErr)
	if err != nil {
		p.logger.Warn("spool encode failed",
			slog.String("event_id", evt.ID()),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := p.store.Put(ctx, entry); err != nil {
		p.logger.Warn("spool write failed",
			slog.String("event_id", evt.ID()),
			slog.String("error", err.Error()),
		)
		return
	}

	observability.LogSpooled(p.logger, evt.ID(), sendErr)
	p.metrics.RecordSpooled(ctx, string(evt.Category()))
}

// Handle routes a crash report through the handler chain. Like Publish
// it never fails from the caller's perspective.
func (p *Pipeline) Handle(ctx context.Context, rep *crash.Report) {
	if rep == nil {
		return
	}

	done := observability.TimedOperation()
	ctx, span := p.spans.StartHandleSpan(ctx, rep.ID, rep.Severity.String())

	handler := p.chain.Handle(ctx, rep)

	ms := done()
	p.metrics.RecordReport(ctx, rep.Severity.String(), handler,
		time.Duration(ms*float64(time.Millisecond)))
	observability.LogReportHandled(p.logger, rep.ID, handler, ms)
	p.spans.EndSpanWithError(span, nil)
}

// Capture is a convenience wrapper that builds a report from err and
// routes it through the chain. A nil err is ignored.
func (p *Pipeline) Capture(ctx context.Context, err error, opts ...crash.ReportOption) {
	if err == nil {
		return
	}
	p.Handle(ctx, crash.NewReport(err, opts...))
}

// Start launches background collaborators, currently the spool flush
// worker. It is a no-op when no spool is configured.
func (p *Pipeline) Start(ctx context.Context) {
	if p.worker != nil {
		p.worker.Start(ctx)
	}
}

// Flush resends one batch of spooled events immediately, e.g. on
// shutdown or when connectivity returns.
func (p *Pipeline) Flush(ctx context.Context) {
	if p.worker != nil {
		p.worker.Flush(ctx)
	}
}

// Close stops the flush worker and releases the spool store.
func (p *Pipeline) Close() error {
	if p.worker != nil {
		p.worker.Stop()
	}
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// Registry returns the strategy registry for further registration.
func (p *Pipeline) Registry() *strategy.Registry {
	return p.registry
}

// Bus returns the observer bus for subscription management.
func (p *Pipeline) Bus() *bus.Bus {
	return p.bus
}

// Chain returns the crash handler chain.
func (p *Pipeline) Chain() *crash.Chain {
	return p.chain
}

// Scores returns the rolling score window observer, or nil when
// Settings.ScoreWindow was not set.
func (p *Pipeline) Scores() *bus.ScoreWindow {
	return p.scores
}
