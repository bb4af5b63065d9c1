package tools

import (
	"fmt"
	"strconv"
	"strings"
)

func readString(args map[string]any, key string, required bool) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("parameter %q is required", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string", key)
	}
	return strings.TrimSpace(s), nil
}

// readInt accepts JSON numbers and numeric strings; natural-language-derived
// arguments arrive in both shapes.
func readInt(args map[string]any, key string, required bool) (int, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return 0, false, fmt.Errorf("parameter %q is required", key)
		}
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), true, nil
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false, fmt.Errorf("parameter %q must be an integer", key)
		}
		return parsed, true, nil
	}
	return 0, false, fmt.Errorf("parameter %q must be an integer", key)
}

func readIntDefault(args map[string]any, key string, defaultVal int) int {
	n, present, err := readInt(args, key, false)
	if err != nil || !present {
		return defaultVal
	}
	return n
}
