package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ElementType returns the item type of a Collection(...) type, or edmType itself
func ElementType(edmType string) string {
	t := strings.TrimSpace(edmType)
	if IsCollectionType(t) && strings.HasSuffix(t, ")") {
		return strings.TrimSpace(t[len("collection(") : len(t)-1])
	}
	return t
}

// ParseValue converts raw user input into a value RenderValue accepts, using
// the field's EDM type. "null" always parses to nil. A quoted literal is
// unquoted for string fields.
func ParseValue(edmType, raw string) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "null" {
		return nil, nil
	}

	t := strings.ToLower(ElementType(edmType))
	switch {
	case strings.Contains(t, "geography"):
		return raw, nil
	case strings.Contains(t, "int"):
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q as %s: %w", raw, edmType, err)
		}
		return n, nil
	case strings.Contains(t, "double") || strings.Contains(t, "single") || strings.Contains(t, "decimal"):
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q as %s: %w", raw, edmType, err)
		}
		return f, nil
	case strings.Contains(t, "bool"):
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q as %s: %w", raw, edmType, err)
		}
		return b, nil
	case strings.Contains(t, "date") || strings.Contains(t, "time"):
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q as %s: %w", raw, edmType, err)
		}
		return ts, nil
	default:
		if s, ok := UnquoteString(raw); ok {
			return s, nil
		}
		return raw, nil
	}
}
