package vault

import "reflect"

// NeedsUpdate reports whether candidate carries values that are absent
// from, or different in, existing. The comparison is one-directional:
// keys present only in existing never count as a difference, and a nil
// candidate never requires an update. Sequences compare by index, not as
// sets.
func NeedsUpdate(existing, candidate any) bool {
	if candidate == nil {
		return false
	}
	if existing == nil {
		return true
	}

	switch cv := candidate.(type) {
	case map[string]any:
		ev, ok := existing.(map[string]any)
		if !ok {
			return true
		}
		for k, v := range cv {
			e, present := ev[k]
			if !present {
				e = nil
			}
			if NeedsUpdate(e, v) {
				return true
			}
		}
		return false
	case []any:
		ev, ok := existing.([]any)
		if !ok || len(ev) != len(cv) {
			return true
		}
		for i := range cv {
			if NeedsUpdate(ev[i], cv[i]) {
				return true
			}
		}
		return false
	default:
		return !scalarEqual(existing, candidate)
	}
}

// scalarEqual compares two scalars by value, treating all numeric types
// as one numeric domain so that a re-parsed frontmatter int matches a
// freshly rendered one.
func scalarEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
