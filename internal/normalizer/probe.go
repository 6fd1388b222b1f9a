package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// The upstream renames fields between API versions. Each helper tries the
// given keys in order and returns the first usable value.

func pickString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := asString(m[k]); ok && s != "" {
			return s
		}
	}
	return ""
}

func pickNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if n, ok := asNumber(m[k]); ok {
			return n, true
		}
	}
	return 0, false
}

func pickInt64(m map[string]any, keys ...string) int64 {
	n, _ := pickNumber(m, keys...)
	return int64(n)
}

func pickObject(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if o, ok := m[k].(map[string]any); ok {
			return o
		}
	}
	return nil
}

func pickList(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if l, ok := m[k].([]any); ok {
			return l
		}
	}
	return nil
}

func pickBool(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch v := m[k].(type) {
		case bool:
			if v {
				return true
			}
		case string:
			if b, err := strconv.ParseBool(v); err == nil && b {
				return true
			}
		}
	}
	return false
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, isFinite(t)
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil && isFinite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && isFinite(f)
	default:
		return 0, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func asInt(v any) (int, bool) {
	n, ok := asNumber(v)
	if !ok || n != float64(int(n)) {
		return 0, false
	}
	return int(n), true
}
