package event

import "fmt"

// Payload is a typed, per-category event body. Payloads are validated at
// construction time (NewFrom), replacing runtime key-presence checks on
// loose maps with compile-time field access.
type Payload interface {
	// Category returns the category the payload belongs to.
	Category() Category

	// Validate checks required fields before the event is built.
	Validate() error

	// Params lowers the payload to the wire-level parameter map.
	Params() Params
}

// PatternLearningPayload describes a design-pattern study milestone.
type PatternLearningPayload struct {
	PatternName      string
	PatternCategory  string
	Completed        bool
	TimeSpentSeconds int
}

// Category implements Payload.
func (p PatternLearningPayload) Category() Category { return CategoryPatternLearning }

// Validate implements Payload.
func (p PatternLearningPayload) Validate() error {
	if p.PatternName == "" {
		return &PayloadError{Category: CategoryPatternLearning, Field: "PatternName"}
	}
	if p.PatternCategory == "" {
		return &PayloadError{Category: CategoryPatternLearning, Field: "PatternCategory"}
	}
	return nil
}

// Params implements Payload.
func (p PatternLearningPayload) Params() Params {
	return Params{
		"pattern_name":       p.PatternName,
		"pattern_category":   p.PatternCategory,
		"completed":          p.Completed,
		"time_spent_seconds": p.TimeSpentSeconds,
	}
}

// UserInteractionPayload describes a single UI interaction.
type UserInteractionPayload struct {
	Element string
	Action  string
	Screen  string
}

// Category implements Payload.
func (p UserInteractionPayload) Category() Category { return CategoryUserInteraction }

// Validate implements Payload.
func (p UserInteractionPayload) Validate() error {
	if p.Element == "" {
		return &PayloadError{Category: CategoryUserInteraction, Field: "Element"}
	}
	if p.Action == "" {
		return &PayloadError{Category: CategoryUserInteraction, Field: "Action"}
	}
	return nil
}

// Params implements Payload.
func (p UserInteractionPayload) Params() Params {
	params := Params{
		"element": p.Element,
		"action":  p.Action,
	}
	if p.Screen != "" {
		params["screen"] = p.Screen
	}
	return params
}

// GameProgressPayload describes tower-defense progression.
type GameProgressPayload struct {
	Level        int
	Score        int
	WavesCleared int
	TowersBuilt  int
}

// Category implements Payload.
func (p GameProgressPayload) Category() Category { return CategoryGameProgress }

// Validate implements Payload.
func (p GameProgressPayload) Validate() error {
	if p.Level <= 0 {
		return &PayloadError{Category: CategoryGameProgress, Field: "Level"}
	}
	return nil
}

// Params implements Payload.
func (p GameProgressPayload) Params() Params {
	return Params{
		"level":         p.Level,
		"score":         p.Score,
		"waves_cleared": p.WavesCleared,
		"towers_built":  p.TowersBuilt,
	}
}

// PerformancePayload describes a timed client-side operation.
type PerformancePayload struct {
	Operation  string
	DurationMS int64
	Success    bool
}

// Category implements Payload.
func (p PerformancePayload) Category() Category { return CategoryPerformance }

// Validate implements Payload.
func (p PerformancePayload) Validate() error {
	if p.Operation == "" {
		return &PayloadError{Category: CategoryPerformance, Field: "Operation"}
	}
	return nil
}

// Params implements Payload.
func (p PerformancePayload) Params() Params {
	return Params{
		"operation":   p.Operation,
		"duration_ms": p.DurationMS,
		"success":     p.Success,
	}
}

// ErrorPayload describes a recoverable error surfaced as telemetry
// rather than as a crash report.
type ErrorPayload struct {
	ErrorType string
	Message   string
	Fatal     bool
}

// Category implements Payload.
func (p ErrorPayload) Category() Category { return CategoryError }

// Validate implements Payload.
func (p ErrorPayload) Validate() error {
	if p.ErrorType == "" {
		return &PayloadError{Category: CategoryError, Field: "ErrorType"}
	}
	return nil
}

// Params implements Payload.
func (p ErrorPayload) Params() Params {
	return Params{
		"error_type": p.ErrorType,
		"message":    p.Message,
		"fatal":      p.Fatal,
	}
}

// CustomEducationalPayload describes free-form educational content events.
// Extra carries caller-defined parameters merged into the bag.
type CustomEducationalPayload struct {
	Topic   string
	Concept string
	Extra   Params
}

// Category implements Payload.
func (p CustomEducationalPayload) Category() Category { return CategoryCustomEducational }

// Validate implements Payload.
func (p CustomEducationalPayload) Validate() error {
	if p.Topic == "" {
		return &PayloadError{Category: CategoryCustomEducational, Field: "Topic"}
	}
	return nil
}

// Params implements Payload.
func (p CustomEducationalPayload) Params() Params {
	params := Params{
		"topic": p.Topic,
	}
	if p.Concept != "" {
		params["concept"] = p.Concept
	}
	return params.Merge(p.Extra)
}

// PayloadError reports a missing or invalid payload field.
type PayloadError struct {
	Category Category
	Field    string
}

// Error implements the error interface.
func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s payload: missing or invalid field %s", e.Category, e.Field)
}
