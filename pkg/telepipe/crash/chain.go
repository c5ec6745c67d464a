package crash

import (
	"context"
	"log/slog"
)

// Chain routes each report to exactly one handler.
//
// The chain owns an explicit ordered slice of handlers instead of
// per-node next pointers, which keeps iteration trivial and rules out
// cycles from misconfiguration. Handlers are appended in priority order:
// the first handler whose CanHandle returns true handles the report and
// traversal stops.
type Chain struct {
	handlers []Handler
	reporter Reporter
	logger   *slog.Logger

	// onHandled is called after each handled report. Optional.
	onHandled func(handler string, rep *Report)
}

// ChainOption configures a chain.
type ChainOption func(*Chain)

// WithChainLogger sets the chain's logger. Defaults to slog.Default().
func WithChainLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger
	}
}

// WithOnHandled sets a callback invoked after a report is handled,
// with the name of the handler that claimed it.
func WithOnHandled(fn func(handler string, rep *Report)) ChainOption {
	return func(c *Chain) {
		c.onHandled = fn
	}
}

// NewChain creates a chain whose built-in fallback forwards to reporter.
// The fallback only fires when no appended handler matches; a correctly
// built chain ends with a catch-all handler and never reaches it.
func NewChain(reporter Reporter, opts ...ChainOption) *Chain {
	c := &Chain{
		reporter: reporter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Append adds a handler at the end of the chain and returns the chain
// for chaining construction calls.
func (c *Chain) Append(h Handler) *Chain {
	if h != nil {
		c.handlers = append(c.handlers, h)
	}
	return c
}

// Len returns the number of handlers in the chain.
func (c *Chain) Len() int {
	return len(c.handlers)
}

// Handle routes the report to the first matching handler and returns
// that handler's name ("default" when the built-in fallback fired).
// At most one handler's HandleError runs per call. Handler failures are
// logged and swallowed; Handle always completes without error from the
// caller's perspective.
func (c *Chain) Handle(ctx context.Context, rep *Report) string {
	if rep == nil {
		return ""
	}

	for _, h := range c.handlers {
		if !h.CanHandle(rep) {
			continue
		}
		if err := h.HandleError(ctx, rep); err != nil {
			c.logger.Warn("crash handler failed",
				slog.String("handler", h.Name()),
				slog.String("report_id", rep.ID),
				slog.String("error", err.Error()),
			)
		}
		if c.onHandled != nil {
			c.onHandled(h.Name(), rep)
		}
		return h.Name()
	}

	return c.handleDefault(ctx, rep)
}

// handleDefault is the hard-coded fallback for chains missing a terminal
// catch-all: log and forward to the reporter, best effort.
func (c *Chain) handleDefault(ctx context.Context, rep *Report) string {
	c.logger.Warn("no handler matched report, using default",
		slog.String("report_id", rep.ID),
		slog.String("severity", rep.Severity.String()),
		slog.String("category", rep.Category.String()),
	)

	if c.reporter != nil {
		if err := c.reporter.ReportCrash(ctx, rep, rep.Fatal()); err != nil {
			c.logger.Warn("default crash report failed",
				slog.String("report_id", rep.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if c.onHandled != nil {
		c.onHandled("default", rep)
	}
	return "default"
}

// NewDefaultChain builds the standard chain: critical severity first,
// then the domain categories, then the general terminal catch-all.
func NewDefaultChain(reporter Reporter, logger *slog.Logger, opts ...ChainOption) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]ChainOption{WithChainLogger(logger)}, opts...)

	return NewChain(reporter, opts...).
		Append(NewCriticalHandler(reporter, logger)).
		Append(NewCategoryHandler(CategoryGameLogic, reporter, logger)).
		Append(NewCategoryHandler(CategoryUI, reporter, logger)).
		Append(NewCategoryHandler(CategoryNetwork, reporter, logger)).
		Append(NewCategoryHandler(CategoryEducational, reporter, logger)).
		Append(NewGeneralHandler(reporter, logger))
}
