// Package hydrate normalizes the dynamic values produced by expression
// engines and manifest decoding into plain Go shapes (map[string]any, []any,
// int64/float64) so single-level equality checks behave consistently across
// engines. Values that need no conversion are returned with their identity
// intact; callers rely on that to preserve reference stability.
package hydrate

import (
	"encoding/json"
	"fmt"
)

// Normalize converts value into a plain Go shape. The original value is
// returned untouched when nothing inside it needs conversion.
func Normalize(value any) any {
	normalized, changed := normalize(value)
	if !changed {
		return value
	}
	return normalized
}

func normalize(value any) (any, bool) {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		if f, err := v.Float64(); err == nil {
			return f, true
		}
		return v.String(), true
	case map[string]any:
		var out map[string]any
		for key, entry := range v {
			normalized, changed := normalize(entry)
			if !changed {
				continue
			}
			if out == nil {
				out = make(map[string]any, len(v))
				for k, e := range v {
					out[k] = e
				}
			}
			out[key] = normalized
		}
		if out == nil {
			return v, false
		}
		return out, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, entry := range v {
			normalized, _ := normalize(entry)
			out[fmt.Sprint(key)] = normalized
		}
		return out, true
	case []any:
		var out []any
		for i, entry := range v {
			normalized, changed := normalize(entry)
			if !changed {
				continue
			}
			if out == nil {
				out = make([]any, len(v))
				copy(out, v)
			}
			out[i] = normalized
		}
		if out == nil {
			return v, false
		}
		return out, true
	}
	return value, false
}
