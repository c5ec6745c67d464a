package telepipe

import (
	"log/slog"

	"github.com/patternlab/telepipe/pkg/telepipe/bus"
	"github.com/patternlab/telepipe/pkg/telepipe/config"
	"github.com/patternlab/telepipe/pkg/telepipe/crash"
	"github.com/patternlab/telepipe/pkg/telepipe/event"
	"github.com/patternlab/telepipe/pkg/telepipe/observability"
	"github.com/patternlab/telepipe/pkg/telepipe/sink"
	"github.com/patternlab/telepipe/pkg/telepipe/spool"
	"github.com/patternlab/telepipe/pkg/telepipe/strategy"
)

// Option configures a pipeline at construction time.
type Option func(*Pipeline)

// WithRegistry replaces the default strategy registry.
func WithRegistry(r *strategy.Registry) Option {
	return func(p *Pipeline) {
		p.registry = r
	}
}

// WithBus replaces the default observer bus.
func WithBus(b *bus.Bus) Option {
	return func(p *Pipeline) {
		p.bus = b
	}
}

// WithChain replaces the default crash handler chain. The chain should
// end with a catch-all handler; see crash.NewDefaultChain.
func WithChain(c *crash.Chain) Option {
	return func(p *Pipeline) {
		p.chain = c
	}
}

// WithTelemetrySink sets the outbound event sink. Defaults to sink.Noop.
func WithTelemetrySink(s sink.TelemetrySink) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.telemetry = s
		}
	}
}

// WithReporter sets the crash reporter used by the default chain.
// Defaults to sink.Noop. Ignored when WithChain supplies a prebuilt
// chain.
func WithReporter(r crash.Reporter) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.reporter = r
		}
	}
}

// WithLogger sets the pipeline logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Defaults to a no-op recorder;
// pass observability.NewMetricsRecorder() for OTel metrics.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithSpanManager sets the span manager. Defaults to a no-op manager;
// pass observability.NewSpanManager() for OTel tracing.
func WithSpanManager(s observability.SpanManager) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.spans = s
		}
	}
}

// WithSpool buffers failed sends in the given store and enables the
// flush worker. Overrides Settings.SpoolPath.
func WithSpool(store spool.Store) Option {
	return func(p *Pipeline) {
		p.store = store
	}
}

// WithPrecondition gates every telemetry send. When fn returns an
// error the send is skipped and the reason logged; the event still
// reaches the observers. Use errors.PreconditionError for reasons such
// as missing consent.
func WithPrecondition(fn func(event.Event) error) Option {
	return func(p *Pipeline) {
		p.precondition = fn
	}
}

// WithSettings applies file-loadable deployment settings: extra clamp
// and deny rules, the score window size, and the spool configuration.
func WithSettings(s config.Settings) Option {
	return func(p *Pipeline) {
		p.settings = &s
	}
}
