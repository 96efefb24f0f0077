package layering

import "reflect"

// Clone returns a deep copy of value that shares no maps, slices or pointers
// with it. Values decoded from JSON or YAML are copied directly; other types
// are walked with reflection. Unexported struct fields are copied shallowly.
func Clone[T any](value T) T {
	if m, ok := any(value).(map[string]any); ok {
		out, _ := any(copyMap(m)).(T)
		return out
	}
	rv := reflect.ValueOf(&value).Elem()
	out := reflect.New(rv.Type()).Elem()
	out.Set(deepCopy(rv))
	cloned, _ := out.Interface().(T)
	return cloned
}

// CloneMap deep-copies a payload map. A nil map yields nil.
func CloneMap(src map[string]any) map[string]any {
	return copyMap(src)
}

func copyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = copyAny(value)
	}
	return out
}

func copyAny(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string, bool, float64, int, int64:
		return v
	case map[string]any:
		return copyMap(v)
	case []any:
		if v == nil {
			return v
		}
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyAny(item)
		}
		return out
	}
	return deepCopy(reflect.ValueOf(value)).Interface()
}

func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Invalid:
		return v
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(deepCopy(v.Elem()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(deepCopy(v.Elem()))
		return out
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		if v.CanInterface() {
			if m, ok := v.Interface().(map[string]any); ok {
				return reflect.ValueOf(copyMap(m))
			}
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < out.NumField(); i++ {
			if field := out.Field(i); field.CanSet() {
				field.Set(deepCopy(v.Field(i)))
			}
		}
		return out
	default:
		return v
	}
}
