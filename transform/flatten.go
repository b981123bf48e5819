package transform

import (
	"strconv"
	"time"
)

// Field extraction helpers for the flattening step. Payload elements are
// generic JSON objects; each helper tries the given source keys in order
// and coerces the first usable value to the target column type.

// stringField returns the first non-empty string value among keys. Numeric
// values are formatted, so a JSON number id still maps to a string column.
func stringField(elem map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := elem[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

// intField returns the first numeric value among keys coerced to int,
// accepting numeric strings. Missing or unusable values yield 0.
func intField(elem map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := elem[key].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}

// dateField parses a timestamp or date string under key and truncates it to
// a UTC date. Returns nil when the value is absent or unparseable.
func dateField(elem map[string]any, key string) *time.Time {
	s, ok := elem[key].(string)
	if !ok || s == "" {
		return nil
	}

	var parsed time.Time
	var err error
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		parsed, err = time.Parse(layout, s)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil
	}

	d := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
