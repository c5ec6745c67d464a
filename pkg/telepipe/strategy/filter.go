package strategy

import "github.com/patternlab/telepipe/pkg/telepipe/event"

// ClampRule bounds a numeric parameter to an inclusive range.
type ClampRule struct {
	Min float64
	Max float64
}

// Contains reports whether v already lies within the rule's bounds.
func (r ClampRule) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Apply clamps v into [Min, Max].
func (r ClampRule) Apply(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// FilterRules describes how a strategy sanitizes a parameter map:
// numeric keys in Clamp are bounded to their inclusive ranges and keys in
// Deny are stripped. Applying the same rules twice produces no further
// change.
type FilterRules struct {
	// Clamp maps parameter key -> inclusive numeric bounds.
	Clamp map[string]ClampRule

	// Deny lists keys stripped from every event, e.g. raw stack traces
	// and free-text user input.
	Deny []string
}

// Merge returns rules containing the receiver overlaid with other.
// Clamp entries in other win; Deny lists are unioned.
func (r FilterRules) Merge(other FilterRules) FilterRules {
	out := FilterRules{
		Clamp: make(map[string]ClampRule, len(r.Clamp)+len(other.Clamp)),
	}
	for k, v := range r.Clamp {
		out.Clamp[k] = v
	}
	for k, v := range other.Clamp {
		out.Clamp[k] = v
	}

	seen := make(map[string]struct{}, len(r.Deny)+len(other.Deny))
	for _, key := range append(append([]string(nil), r.Deny...), other.Deny...) {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out.Deny = append(out.Deny, key)
	}
	return out
}

// Apply returns a sanitized copy of params. The input is not modified.
// Clamped integer parameters stay integers; floats stay floats.
func (r FilterRules) Apply(params event.Params) event.Params {
	out := params.Clone()

	for _, key := range r.Deny {
		delete(out, key)
	}

	for key, rule := range r.Clamp {
		v, ok := out.Number(key)
		if !ok {
			continue
		}
		if rule.Contains(v) {
			continue
		}
		clamped := rule.Apply(v)
		switch out[key].(type) {
		case int:
			out[key] = int(clamped)
		case int64:
			out[key] = int64(clamped)
		default:
			out[key] = clamped
		}
	}

	return out
}

// DenyDefaults are keys stripped by every built-in strategy.
var DenyDefaults = []string{
	"stack_trace",
	"raw_stack",
	"user_input",
	"free_text",
}
