// Package config loads pipeline settings from YAML or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with file-friendly decoding: it accepts
// time.ParseDuration strings ("30s", "1h30m") or numeric seconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return d.coerce(raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.coerce(raw)
}

func (d *Duration) coerce(raw any) error {
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(v * float64(time.Second))
	default:
		return fmt.Errorf("unsupported duration value %v", raw)
	}
	return nil
}

// Bounds is an inclusive numeric range for a clamped parameter.
type Bounds struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Settings configures a pipeline beyond its built-in defaults.
type Settings struct {
	// Clamp overrides or extends per-key clamp bounds applied by every
	// registered strategy.
	Clamp map[string]Bounds `yaml:"clamp" json:"clamp"`

	// Deny lists extra parameter keys stripped from every event.
	Deny []string `yaml:"deny" json:"deny"`

	// ScoreWindow sizes the rolling score observer. 0 keeps the default.
	ScoreWindow int `yaml:"score_window" json:"score_window"`

	// SpoolPath enables the SQLite spool when non-empty.
	// Use ":memory:" for an ephemeral spool.
	SpoolPath string `yaml:"spool_path" json:"spool_path"`

	// SpoolPollInterval is how often spooled events are resent.
	// 0 keeps the worker default.
	SpoolPollInterval Duration `yaml:"spool_poll_interval" json:"spool_poll_interval"`

	// SpoolMaxAttempts drops spooled events after this many resends.
	// 0 keeps the worker default.
	SpoolMaxAttempts int `yaml:"spool_max_attempts" json:"spool_max_attempts"`
}

// Validate checks the settings for internal consistency.
func (s *Settings) Validate() error {
	for key, b := range s.Clamp {
		if b.Min > b.Max {
			return fmt.Errorf("clamp %s: min %v greater than max %v", key, b.Min, b.Max)
		}
	}
	if s.ScoreWindow < 0 {
		return fmt.Errorf("score_window must not be negative")
	}
	if s.SpoolPollInterval < 0 {
		return fmt.Errorf("spool_poll_interval must not be negative")
	}
	if s.SpoolMaxAttempts < 0 {
		return fmt.Errorf("spool_max_attempts must not be negative")
	}
	return nil
}
