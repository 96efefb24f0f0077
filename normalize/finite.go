package normalize

import "math"

// DropNonFinite returns entry with every NaN or infinite number replaced by
// nil, together with the number of replacements. When there is nothing to
// replace entry itself is returned; otherwise the result is a copy.
func DropNonFinite(entry map[string]any) (map[string]any, int) {
	if !hasNonFinite(entry) {
		return entry, 0
	}
	replaced := 0
	out, _ := scrubNonFinite(entry, &replaced).(map[string]any)
	return out, replaced
}

func nonFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

func hasNonFinite(value any) bool {
	switch v := value.(type) {
	case float64:
		return nonFinite(v)
	case float32:
		return nonFinite(float64(v))
	case map[string]any:
		for _, item := range v {
			if hasNonFinite(item) {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if hasNonFinite(item) {
				return true
			}
		}
	}
	return false
}

func scrubNonFinite(value any, replaced *int) any {
	switch v := value.(type) {
	case float64, float32:
		if hasNonFinite(v) {
			*replaced++
			return nil
		}
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = scrubNonFinite(item, replaced)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = scrubNonFinite(item, replaced)
		}
		return out
	}
	return value
}
