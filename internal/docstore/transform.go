package docstore

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// TimeLayout is the fixed-width UTC layout timestamps are stored in, so that
// string ordering matches chronological ordering.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t the way the store persists timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

type transformKind int

const (
	arrayUnion transformKind = iota + 1
	arrayRemove
	deleteField
)

type transform struct {
	kind   transformKind
	values []any
}

// ArrayUnion appends each value not already present in the array field.
func ArrayUnion(values ...any) any {
	return transform{kind: arrayUnion, values: values}
}

// ArrayRemove removes every occurrence of each value from the array field.
func ArrayRemove(values ...any) any {
	return transform{kind: arrayRemove, values: values}
}

// DeleteField removes the field from the document.
func DeleteField() any {
	return transform{kind: deleteField}
}

// applyFields merges fields into doc in place.
func applyFields(doc map[string]any, fields map[string]any) error {
	for key, v := range fields {
		t, ok := v.(transform)
		if !ok {
			nv, err := normalize(v)
			if err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			doc[key] = nv
			continue
		}

		if t.kind == deleteField {
			delete(doc, key)
			continue
		}

		current, _ := doc[key].([]any)
		values := make([]any, 0, len(t.values))
		for _, raw := range t.values {
			nv, err := normalize(raw)
			if err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			values = append(values, nv)
		}

		switch t.kind {
		case arrayUnion:
			out := append([]any{}, current...)
			for _, v := range values {
				if !containsValue(out, v) {
					out = append(out, v)
				}
			}
			doc[key] = out
		case arrayRemove:
			out := make([]any, 0, len(current))
			for _, e := range current {
				if !containsValue(values, e) {
					out = append(out, e)
				}
			}
			doc[key] = out
		}
	}
	return nil
}

func containsValue(list []any, v any) bool {
	for _, e := range list {
		if reflect.DeepEqual(e, v) {
			return true
		}
	}
	return false
}

// normalize converts v to the canonical form a JSON round trip produces,
// with timestamps rendered in TimeLayout.
func normalize(v any) (any, error) {
	data, err := json.Marshal(convertTimes(v))
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}

func normalizeDocument(data map[string]any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	v, err := normalize(data)
	if err != nil {
		return nil, err
	}
	doc, _ := v.(map[string]any)
	return doc, nil
}

func convertTimes(v any) any {
	switch t := v.(type) {
	case time.Time:
		return FormatTime(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return FormatTime(*t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = convertTimes(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = convertTimes(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = convertTimes(e)
		}
		return out
	default:
		return v
	}
}
