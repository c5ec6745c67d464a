package crash

import (
	"context"
	"log/slog"
)

// Reporter delivers a report to the crash-reporting backend.
// Implementations must report failure via an error, never by panicking.
type Reporter interface {
	ReportCrash(ctx context.Context, rep *Report, fatal bool) error
}

// Handler claims and handles reports matching its predicate.
type Handler interface {
	// Name identifies the handler in logs and metrics.
	Name() string

	// CanHandle reports whether this handler claims the report.
	CanHandle(rep *Report) bool

	// HandleError processes a claimed report. An error here is logged
	// by the chain and never propagated further.
	HandleError(ctx context.Context, rep *Report) error
}

// NewHandler creates a handler from a predicate and an action.
func NewHandler(name string, predicate func(*Report) bool, action func(context.Context, *Report) error) Handler {
	return &funcHandler{name: name, predicate: predicate, action: action}
}

type funcHandler struct {
	name      string
	predicate func(*Report) bool
	action    func(context.Context, *Report) error
}

func (h *funcHandler) Name() string { return h.name }

func (h *funcHandler) CanHandle(rep *Report) bool {
	return h.predicate(rep)
}

func (h *funcHandler) HandleError(ctx context.Context, rep *Report) error {
	return h.action(ctx, rep)
}

// NewCriticalHandler handles every critical-severity report, forwarding
// it to the backend as fatal. It should sit at the head of the chain.
func NewCriticalHandler(reporter Reporter, logger *slog.Logger) Handler {
	return NewHandler("critical",
		func(rep *Report) bool {
			return rep.Severity == SeverityCritical
		},
		func(ctx context.Context, rep *Report) error {
			logger.Error("critical failure",
				slog.String("report_id", rep.ID),
				slog.String("error", rep.Err.Error()),
			)
			return reporter.ReportCrash(ctx, rep, true)
		},
	)
}

// NewCategoryHandler handles non-critical reports of one category.
func NewCategoryHandler(category Category, reporter Reporter, logger *slog.Logger) Handler {
	return NewHandler(category.String(),
		func(rep *Report) bool {
			return rep.Category == category
		},
		func(ctx context.Context, rep *Report) error {
			logger.Warn("failure reported",
				slog.String("report_id", rep.ID),
				slog.String("category", rep.Category.String()),
				slog.String("error", rep.Err.Error()),
			)
			return reporter.ReportCrash(ctx, rep, rep.Fatal())
		},
	)
}

// NewGeneralHandler handles every report. It is the explicit terminal
// catch-all appended by NewDefaultChain.
func NewGeneralHandler(reporter Reporter, logger *slog.Logger) Handler {
	return NewHandler("general",
		func(*Report) bool { return true },
		func(ctx context.Context, rep *Report) error {
			logger.Warn("unclassified failure reported",
				slog.String("report_id", rep.ID),
				slog.String("error", rep.Err.Error()),
			)
			return reporter.ReportCrash(ctx, rep, rep.Fatal())
		},
	)
}
