// Package event defines the immutable analytics event model for telepipe.
//
// Events are immutable once created - any modification creates a new event.
// Construction happens either from a raw parameter map (New) or from a typed
// per-category payload validated up front (NewFrom).
package event

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies an event and selects its processing strategy.
type Category string

const (
	// CategoryPatternLearning covers design-pattern study milestones.
	CategoryPatternLearning Category = "pattern_learning"

	// CategoryUserInteraction covers taps, selections, and navigation.
	CategoryUserInteraction Category = "user_interaction"

	// CategoryGameProgress covers level, score, and wave progression.
	CategoryGameProgress Category = "game_progress"

	// CategoryPerformance covers timed client-side operations.
	CategoryPerformance Category = "performance"

	// CategoryError covers recoverable application errors surfaced as telemetry.
	CategoryError Category = "error"

	// CategoryCustomEducational covers free-form educational content events.
	CategoryCustomEducational Category = "custom_educational"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryPatternLearning, CategoryUserInteraction, CategoryGameProgress,
		CategoryPerformance, CategoryError, CategoryCustomEducational:
		return true
	}
	return false
}

// Event is an immutable record of a single analytics occurrence.
// All accessors return copies where the underlying value is mutable,
// so holders of an Event can never observe later changes.
type Event struct {
	id        string
	name      string
	category  Category
	params    Params
	timestamp time.Time
}

// Option configures event creation.
type Option func(*eventConfig)

type eventConfig struct {
	id        string
	timestamp time.Time
}

// WithID sets a specific event ID (default: auto-generated UUID).
func WithID(id string) Option {
	return func(cfg *eventConfig) {
		cfg.id = id
	}
}

// WithTimestamp sets a specific timestamp (default: time.Now()).
func WithTimestamp(t time.Time) Option {
	return func(cfg *eventConfig) {
		cfg.timestamp = t
	}
}

// New creates an event from a raw parameter map.
// The map is deep-copied; the caller keeps ownership of params.
func New(name string, category Category, params Params, opts ...Option) Event {
	cfg := &eventConfig{
		id:        uuid.New().String(),
		timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return Event{
		id:        cfg.id,
		name:      name,
		category:  category,
		params:    params.Clone(),
		timestamp: cfg.timestamp,
	}
}

// NewFrom creates an event from a typed payload, validating it first.
func NewFrom(name string, payload Payload, opts ...Option) (Event, error) {
	if err := payload.Validate(); err != nil {
		return Event{}, err
	}
	return New(name, payload.Category(), payload.Params(), opts...), nil
}

// ID returns the unique event identifier.
func (e Event) ID() string {
	return e.id
}

// Name returns the event name (e.g. "pattern_completed").
func (e Event) Name() string {
	return e.name
}

// Category returns the event category.
func (e Event) Category() Category {
	return e.category
}

// Timestamp returns when the event occurred.
func (e Event) Timestamp() time.Time {
	return e.timestamp
}

// Params returns a copy of the parameter map.
func (e Event) Params() Params {
	return e.params.Clone()
}

// Param returns a single parameter value without copying the whole map.
func (e Event) Param(key string) (any, bool) {
	v, ok := e.params[key]
	return v, ok
}

// Len returns the number of parameters.
func (e Event) Len() int {
	return len(e.params)
}

// WithParams returns a new event whose parameter map is replaced by params.
// The receiver is unchanged.
func (e Event) WithParams(params Params) Event {
	e.params = params.Clone()
	return e
}

// WithParam returns a new event with one parameter added or replaced.
// The receiver is unchanged.
func (e Event) WithParam(key string, value any) Event {
	params := e.params.Clone()
	params[key] = value
	e.params = params
	return e
}
