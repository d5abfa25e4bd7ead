package relib

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Row is a JSON-shaped value: an object whose values may be strings,
// numbers, booleans, arrays, nested objects, or nil.
type Row = map[string]any

const (
	sentinelUTCNow   = "@@utcnow"
	sentinelIdentity = "@@identity"
)

var canonicalKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,50}$`)

// canonicalKey joins the stringified values of fields, in order, with ".".
// It returns an error if any field is missing from row or if the resulting
// string doesn't match the canonical-primary-key grammar.
func canonicalKey(row Row, fields []string) (string, error) {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v, ok := row[f]
		if !ok || v == nil {
			return "", fmt.Errorf("missing field %q", f)
		}
		parts = append(parts, stringifyValue(v))
	}
	key := strings.Join(parts, ".")
	if !canonicalKeyPattern.MatchString(key) {
		return "", fmt.Errorf("malformed canonical key %q", key)
	}
	return key, nil
}

func stringifyValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// shallowCopyRow copies the top-level keys of row into a new map. Nested
// maps/slices are shared with the original, matching the teacher's
// policy of treating post-insertion mutation of non-key fields as the
// caller's responsibility.
func shallowCopyRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// fieldsPresent reports whether every field in fields has a non-nil value
// in row.
func fieldsPresent(row Row, fields []string) bool {
	for _, f := range fields {
		v, ok := row[f]
		if !ok || v == nil {
			return false
		}
	}
	return true
}

// fieldsAbsent reports whether every field in fields is missing or nil in
// row (used to treat a foreign key as "not set").
func fieldsAbsent(row Row, fields []string) bool {
	for _, f := range fields {
		if v, ok := row[f]; ok && v != nil {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	return stringifyValue(a) == stringifyValue(b) && sameKind(a, b)
}

// sameKind guards against "1" (string) comparing equal to 1 (number) purely
// by stringified representation, which would let a string PK alias a
// numeric one.
func sameKind(a, b any) bool {
	kind := func(v any) string {
		switch v.(type) {
		case string:
			return "string"
		case bool:
			return "bool"
		case float64, int, int64:
			return "number"
		default:
			return "other"
		}
	}
	return kind(a) == kind(b)
}

func fieldValues(row Row, fields []string) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = row[f]
	}
	return out
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	default:
		return 0, false
	}
}

// resolveDefaults merges table defaults into row for any missing field,
// resolving the `@@utcnow`/`@@identity` sentinels at call time. identityScan
// returns the largest integer value of a field among the table's existing
// rows, used to compute `@@identity`. The result is always a fresh map.
func resolveDefaults(row Row, defaults map[string]any, identityScan func(field string) int64) Row {
	if len(defaults) == 0 {
		return shallowCopyRow(row)
	}
	out := shallowCopyRow(row)
	for field, def := range defaults {
		if v, ok := out[field]; ok && v != nil {
			continue
		}
		switch def {
		case sentinelUTCNow:
			out[field] = time.Now().UTC().Format(time.RFC3339)
		case sentinelIdentity:
			out[field] = identityScan(field) + 1
		default:
			out[field] = def
		}
	}
	return out
}
