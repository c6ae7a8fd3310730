package entur

import (
	"fmt"
	"strings"
	"time"
)

// Entur returns offsets without a colon; the colon form is accepted as well.
var timestampLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

func lookup(raw map[string]any, path ...string) (any, error) {
	var cur any = raw
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, &FieldError{Field: strings.Join(path, "."), Err: ErrMissingField}
		}
		cur, ok = obj[key]
		if !ok || cur == nil {
			return nil, &FieldError{Field: strings.Join(path, "."), Err: ErrMissingField}
		}
	}
	return cur, nil
}

func lookupString(raw map[string]any, path ...string) (string, error) {
	v, err := lookup(raw, path...)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: strings.Join(path, "."), Err: fmt.Errorf("%w: want string, got %T", ErrMissingField, v)}
	}
	return s, nil
}

func lookupBool(raw map[string]any, path ...string) (bool, error) {
	v, err := lookup(raw, path...)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &FieldError{Field: strings.Join(path, "."), Err: fmt.Errorf("%w: want bool, got %T", ErrMissingField, v)}
	}
	return b, nil
}

func lookupFloat(raw map[string]any, key string) (float64, bool) {
	v, ok := raw[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func lookupTime(raw map[string]any, key string) (time.Time, error) {
	s, err := lookupString(raw, key)
	if err != nil {
		return time.Time{}, err
	}
	return parseTimestamp(key, s)
}

func parseTimestamp(field, s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, &FieldError{Field: field, Err: firstErr}
}
