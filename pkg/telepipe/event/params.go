package event

import "sort"

// Params is a string-keyed bag of scalar or list parameter values.
// Supported value kinds are string, bool, int, int64, float64, []string,
// and []any; anything else passes through untouched but is opaque to
// filtering and clamping.
type Params map[string]any

// Clone returns a deep copy of the map. Slice values are copied so the
// clone never aliases the original. A nil receiver clones to an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		switch val := v.(type) {
		case []string:
			out[k] = append([]string(nil), val...)
		case []any:
			out[k] = append([]any(nil), val...)
		default:
			out[k] = v
		}
	}
	return out
}

// Keys returns the parameter keys in sorted order. Go maps do not keep
// insertion order; sorted iteration gives sinks and logs a stable layout.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a new map containing p overlaid with other.
// Keys in other win. Neither input is modified.
func (p Params) Merge(other Params) Params {
	out := p.Clone()
	for k, v := range other.Clone() {
		out[k] = v
	}
	return out
}

// Number extracts a numeric parameter as float64.
// Returns false for missing or non-numeric values.
func (p Params) Number(key string) (float64, bool) {
	switch v := p[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// String extracts a string parameter.
func (p Params) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Bool extracts a boolean parameter.
func (p Params) Bool(key string) (bool, bool) {
	b, ok := p[key].(bool)
	return b, ok
}
