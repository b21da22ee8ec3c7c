// Package document maps untyped store documents to model types and back.
// Decoding never fails on a single field: missing or mistyped values fall
// back to a default.
package document

import (
	"strings"
	"time"
)

// Clock supplies "now" for timestamps that are missing or malformed.
type Clock func() time.Time

func stringField(d map[string]any, key, fallback string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return fallback
}

// optionalString returns nil for absent, mistyped or blank values.
func optionalString(d map[string]any, key string) *string {
	s, ok := d[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func boolField(d map[string]any, key string) bool {
	b, _ := d[key].(bool)
	return b
}

// stringsField keeps the string elements of an array field and drops the
// rest. The result is never nil.
func stringsField(d map[string]any, key string) []string {
	out := []string{}
	switch arr := d[key].(type) {
	case []any:
		for _, v := range arr {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, arr...)
	}
	return out
}

func objectsField(d map[string]any, key string) []map[string]any {
	var out []map[string]any
	switch arr := d[key].(type) {
	case []any:
		for _, v := range arr {
			if m, ok := v.(map[string]any); ok {
				out = append(out, m)
			}
		}
	case []map[string]any:
		out = append(out, arr...)
	}
	return out
}

func timeField(d map[string]any, key string, now Clock) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return now()
}

func optionalValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
