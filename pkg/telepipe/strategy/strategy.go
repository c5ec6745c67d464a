// Package strategy implements per-category event validation, filtering,
// and enrichment, plus the registry that maps a category to its strategy.
//
// A strategy never fails an event: validation failures are logged and the
// original event passes through unchanged, so producing telemetry can never
// break the caller.
package strategy

import (
	"log/slog"

	"github.com/patternlab/telepipe/pkg/telepipe/errors"
	"github.com/patternlab/telepipe/pkg/telepipe/event"
)

// Strategy validates and enriches events of one category.
type Strategy interface {
	// Category returns the category this strategy is bound to.
	Category() event.Category

	// Validate checks the event against the strategy's contract.
	Validate(evt event.Event) error

	// Process returns a new event with filtered parameters and static
	// enrichment merged in. If validation fails, Process logs a warning
	// and returns the original event unchanged. It never errors and
	// never drops the event.
	Process(evt event.Event) event.Event
}

// Option configures a strategy.
type Option func(*base)

// WithRequired sets parameter keys that must be present for validation
// to pass.
func WithRequired(keys ...string) Option {
	return func(b *base) {
		b.required = keys
	}
}

// WithRules sets the filter rules applied after successful validation.
// The default denylist (DenyDefaults) is merged in automatically.
func WithRules(rules FilterRules) Option {
	return func(b *base) {
		b.rules = rules
	}
}

// WithEnrichment sets static key/value pairs merged into every processed
// event of this category.
func WithEnrichment(enrichment event.Params) Option {
	return func(b *base) {
		b.enrichment = enrichment.Clone()
	}
}

// WithValidator adds a custom validation check run after the required-key
// check.
func WithValidator(fn func(event.Event) error) Option {
	return func(b *base) {
		b.validator = fn
	}
}

// WithLogger sets the logger for validation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// New creates a strategy for the given category.
func New(category event.Category, opts ...Option) Strategy {
	b := &base{
		category: category,
		rules:    FilterRules{Deny: DenyDefaults},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	// DenyDefaults always apply, even when rules were replaced.
	b.rules = FilterRules{Deny: DenyDefaults}.Merge(b.rules)
	return b
}

type base struct {
	category   event.Category
	required   []string
	rules      FilterRules
	enrichment event.Params
	validator  func(event.Event) error
	logger     *slog.Logger
}

// Category implements Strategy.
func (b *base) Category() event.Category {
	return b.category
}

// Validate implements Strategy.
func (b *base) Validate(evt event.Event) error {
	if evt.Category() != b.category {
		return errors.Validation(
			&errors.FieldError{Field: "category", Message: "event category does not match strategy"},
			"strategy validate",
		)
	}
	for _, key := range b.required {
		if _, ok := evt.Param(key); !ok {
			return errors.Validation(
				&errors.FieldError{Field: key, Message: "required parameter missing"},
				"strategy validate",
			)
		}
	}
	if b.validator != nil {
		return b.validator(evt)
	}
	return nil
}

// Process implements Strategy.
func (b *base) Process(evt event.Event) event.Event {
	if err := b.Validate(evt); err != nil {
		if b.logger != nil {
			b.logger.Warn("event validation failed, passing through unenriched",
				slog.String("event", evt.Name()),
				slog.String("category", string(evt.Category())),
				slog.String("error", err.Error()),
			)
		}
		return evt
	}

	params := b.rules.Apply(evt.Params())
	if len(b.enrichment) > 0 {
		params = params.Merge(b.enrichment)
	}
	return evt.WithParams(params)
}
