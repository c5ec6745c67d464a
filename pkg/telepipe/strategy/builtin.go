package strategy

import (
	"log/slog"

	"github.com/patternlab/telepipe/pkg/telepipe/event"
)

// Clamp bounds shared by the built-in strategies. Bounds are inclusive.
const (
	// MaxDurationMS bounds millisecond durations.
	MaxDurationMS = 60_000

	// MaxTimeSpentSeconds bounds per-pattern study time.
	MaxTimeSpentSeconds = 3_600

	// MaxScore bounds reported game scores.
	MaxScore = 1_000_000

	// MaxLevel bounds reported level numbers.
	MaxLevel = 1_000
)

// NewPatternLearning creates the strategy for pattern-learning events.
// Requires pattern_name, pattern_category, and completed; clamps
// time_spent_seconds; tags events with the learning context.
func NewPatternLearning(logger *slog.Logger) Strategy {
	return New(event.CategoryPatternLearning,
		WithRequired("pattern_name", "pattern_category", "completed"),
		WithRules(FilterRules{
			Clamp: map[string]ClampRule{
				"time_spent_seconds": {Min: 0, Max: MaxTimeSpentSeconds},
			},
		}),
		WithEnrichment(event.Params{
			"learning_context": "design_patterns",
		}),
		WithLogger(logger),
	)
}

// NewUserInteraction creates the strategy for UI interaction events.
func NewUserInteraction(logger *slog.Logger) Strategy {
	return New(event.CategoryUserInteraction,
		WithRequired("element", "action"),
		WithEnrichment(event.Params{
			"interaction_context": "game_ui",
		}),
		WithLogger(logger),
	)
}

// NewGameProgress creates the strategy for game progression events.
func NewGameProgress(logger *slog.Logger) Strategy {
	return New(event.CategoryGameProgress,
		WithRequired("level"),
		WithRules(FilterRules{
			Clamp: map[string]ClampRule{
				"score": {Min: 0, Max: MaxScore},
				"level": {Min: 1, Max: MaxLevel},
			},
		}),
		WithEnrichment(event.Params{
			"game_mode": "tower_defense",
		}),
		WithLogger(logger),
	)
}

// NewPerformance creates the strategy for timed-operation events.
// Durations are clamped to [0, MaxDurationMS] milliseconds.
func NewPerformance(logger *slog.Logger) Strategy {
	return New(event.CategoryPerformance,
		WithRequired("operation", "duration_ms"),
		WithRules(FilterRules{
			Clamp: map[string]ClampRule{
				"duration_ms": {Min: 0, Max: MaxDurationMS},
			},
		}),
		WithEnrichment(event.Params{
			"perf_scope": "client",
		}),
		WithLogger(logger),
	)
}

// NewError creates the strategy for recoverable-error events.
// Raw stack traces and free text are stripped by the default denylist.
func NewError(logger *slog.Logger) Strategy {
	return New(event.CategoryError,
		WithRequired("error_type"),
		WithEnrichment(event.Params{
			"error_source": "app",
		}),
		WithLogger(logger),
	)
}

// NewCustomEducational creates the strategy for free-form educational
// content events.
func NewCustomEducational(logger *slog.Logger) Strategy {
	return New(event.CategoryCustomEducational,
		WithRequired("topic"),
		WithEnrichment(event.Params{
			"learning_context": "design_patterns",
			"content_type":     "educational",
		}),
		WithLogger(logger),
	)
}

// NewDefaultRegistry creates a registry with all built-in strategies
// registered.
func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry()
	r.Register(event.CategoryPatternLearning, NewPatternLearning(logger))
	r.Register(event.CategoryUserInteraction, NewUserInteraction(logger))
	r.Register(event.CategoryGameProgress, NewGameProgress(logger))
	r.Register(event.CategoryPerformance, NewPerformance(logger))
	r.Register(event.CategoryError, NewError(logger))
	r.Register(event.CategoryCustomEducational, NewCustomEducational(logger))
	return r
}
