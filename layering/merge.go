// Package layering deep-copies and merges snapshot payloads. Hydration uses
// it to keep caller payloads untouched and to fill the scene object from
// configured defaults.
package layering

// MergeLayers merges payload maps ordered from strongest to weakest into a
// new map. Nested objects merge key by key; any other value from a stronger
// layer replaces the weaker one whole. A null value does not hide a weaker
// value. The layers are never modified.
func MergeLayers(layers ...map[string]any) map[string]any {
	if len(layers) == 0 {
		return nil
	}
	var merged map[string]any
	for i := len(layers) - 1; i >= 0; i-- {
		merged = mergeInto(merged, layers[i])
	}
	return merged
}

// mergeInto writes strong over base, which the caller owns.
func mergeInto(base, strong map[string]any) map[string]any {
	if base == nil {
		base = make(map[string]any, len(strong))
	}
	for key, value := range strong {
		if value == nil {
			if _, ok := base[key]; !ok {
				base[key] = nil
			}
			continue
		}
		if object, ok := value.(map[string]any); ok {
			if existing, ok := base[key].(map[string]any); ok {
				base[key] = mergeInto(existing, object)
				continue
			}
		}
		base[key] = copyAny(value)
	}
	return base
}
