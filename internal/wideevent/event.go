package wideevent

// Fields is the nested key-value structure of a wide event. Values may be
// scalars, slices, or nested maps (Fields or map[string]any).
type Fields map[string]any

// Level is the severity of a wide event.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Reserved keys populated by the system itself. All other keys are
// caller-defined.
const (
	KeyLevel     = "level"
	KeyStatus    = "status"
	KeyDuration  = "duration"
	KeyTimestamp = "timestamp"
	KeyService   = "service"
	KeyPath      = "path"
	KeyError     = "error"
)

// merge deep-merges src into dst. When both sides hold a map the merge
// recurses; otherwise the incoming value replaces the current one (scalars,
// slices and mixed-type values overwrite, never concatenate). Keys are never
// deleted.
func merge(dst Fields, src Fields) {
	for k, v := range src {
		cur, ok := dst[k]
		if !ok {
			dst[k] = v
			continue
		}
		curMap, curOK := asFields(cur)
		srcMap, srcOK := asFields(v)
		if curOK && srcOK {
			merge(curMap, srcMap)
			dst[k] = curMap
			continue
		}
		dst[k] = v
	}
}

// asFields normalizes the two map shapes callers hand us.
func asFields(v any) (Fields, bool) {
	switch m := v.(type) {
	case Fields:
		return m, true
	case map[string]any:
		return Fields(m), true
	default:
		return nil, false
	}
}

// Clone returns a deep copy of f. Nested maps are copied; slices and scalars
// are shared (the pipeline never mutates them after finalization).
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		if m, ok := asFields(v); ok {
			out[k] = m.Clone()
			continue
		}
		out[k] = v
	}
	return out
}

// String returns the string value at key, or "" if absent or not a string.
func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// Int returns the integer value at key, tolerating the numeric types JSON
// decoding and callers produce.
func (f Fields) Int(key string) (int, bool) {
	switch n := f[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// Float returns the float value at key.
func (f Fields) Float(key string) (float64, bool) {
	switch n := f[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// EventLevel returns the event's level, defaulting to info when unset or
// unrecognized.
func (f Fields) EventLevel() Level {
	switch Level(f.String(KeyLevel)) {
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}
