// Package crash routes crash reports through an ordered handler chain.
//
// A report is created at the point of failure, consumed exactly once by
// the first matching handler, and then discarded. Handling a report can
// never fail from the caller's perspective: reporting-backend errors are
// logged and swallowed, because crash reporting must not itself crash
// the app.
package crash

import (
	"time"

	"github.com/google/uuid"
)

// Severity ranks how urgent a report is.
type Severity int

const (
	// SeverityNormal is the default severity.
	SeverityNormal Severity = iota

	// SeverityCritical marks failures that should be reported as fatal.
	SeverityCritical

	// SeverityLow marks noise-level failures.
	SeverityLow
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityLow:
		return "low"
	default:
		return "normal"
	}
}

// Category classifies which domain a report belongs to.
type Category int

const (
	// CategoryGeneral is the fallback category.
	CategoryGeneral Category = iota

	// CategoryGameLogic covers failures in game rules and simulation.
	CategoryGameLogic

	// CategoryUI covers failures in presentation code.
	CategoryUI

	// CategoryNetwork covers transport and connectivity failures.
	CategoryNetwork

	// CategoryEducational covers failures in learning-content code.
	CategoryEducational
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryGameLogic:
		return "game_logic"
	case CategoryUI:
		return "ui"
	case CategoryNetwork:
		return "network"
	case CategoryEducational:
		return "educational"
	default:
		return "general"
	}
}

// Report describes one crash or error occurrence.
type Report struct {
	// ID uniquely identifies the report.
	ID string

	// Err is the failure value.
	Err error

	// Stack is the captured stack trace, if any.
	Stack string

	// Severity ranks the report's urgency.
	Severity Severity

	// Category selects the domain handler.
	Category Category

	// Context carries structured key/value context captured at the
	// failure site.
	Context map[string]any

	// Timestamp records when the failure occurred.
	Timestamp time.Time
}

// ReportOption configures report creation.
type ReportOption func(*Report)

// WithStack attaches a stack trace.
func WithStack(stack string) ReportOption {
	return func(r *Report) {
		r.Stack = stack
	}
}

// WithSeverity sets the report severity.
func WithSeverity(s Severity) ReportOption {
	return func(r *Report) {
		r.Severity = s
	}
}

// WithCategory sets the report category.
func WithCategory(c Category) ReportOption {
	return func(r *Report) {
		r.Category = c
	}
}

// WithContext merges context entries into the report.
func WithContext(ctx map[string]any) ReportOption {
	return func(r *Report) {
		for k, v := range ctx {
			r.Context[k] = v
		}
	}
}

// WithTimestamp sets a specific timestamp (default: time.Now()).
func WithTimestamp(t time.Time) ReportOption {
	return func(r *Report) {
		r.Timestamp = t
	}
}

// NewReport creates a report for err at the point of failure.
func NewReport(err error, opts ...ReportOption) *Report {
	r := &Report{
		ID:        uuid.New().String(),
		Err:       err,
		Severity:  SeverityNormal,
		Category:  CategoryGeneral,
		Context:   make(map[string]any),
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fatal reports whether the report should be forwarded as fatal.
func (r *Report) Fatal() bool {
	return r.Severity == SeverityCritical
}
