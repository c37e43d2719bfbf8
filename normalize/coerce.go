// ABOUTME: Field coercion for loosely-typed contact and activity records
// ABOUTME: Turns heterogeneous ids, dates and flags into canonical Go values
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is a contact or activity as decoded from JSON.
type Record map[string]any

// dateLayouts are tried in order for string dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ID coerces an identifier field into its canonical string form. Strings are
// trimmed, integral numbers are formatted without exponent, and Mongo-style
// wrappers ({"$oid": ...}, {"_id": ...}, {"id": ...}) are unwrapped.
// Anything else yields "".
func ID(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return strings.TrimSpace(x.String())
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		if x == math.Trunc(x) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case map[string]any:
		for _, k := range []string{"$oid", "_id", "id"} {
			if inner, ok := x[k]; ok {
				return ID(inner)
			}
		}
	case Record:
		return ID(map[string]any(x))
	case interface{ Hex() string }:
		return x.Hex()
	case interface{ String() string }:
		return strings.TrimSpace(x.String())
	}
	return ""
}

// Date coerces a date field. Date-only strings are read as local midnight in
// loc; numbers are epoch milliseconds. ok is false for anything unparseable.
func Date(v any, loc *time.Location) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	if loc == nil {
		loc = time.Local
	}

	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case string:
		return parseDateString(x, loc)
	case json.Number:
		if ms, err := x.Int64(); err == nil {
			return fromMillis(ms)
		}
		return parseDateString(x.String(), loc)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}, false
		}
		return fromMillis(int64(x))
	case int64:
		return fromMillis(x)
	case int:
		return fromMillis(int64(x))
	case map[string]any:
		if inner, ok := x["$date"]; ok {
			return Date(inner, loc)
		}
	case Record:
		return Date(map[string]any(x), loc)
	}
	return time.Time{}, false
}

func parseDateString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "invalid date") {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, !t.IsZero()
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromMillis(ms)
	}
	return time.Time{}, false
}

func fromMillis(ms int64) (time.Time, bool) {
	if ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// DatePtr is Date returning nil when the field is absent or unparseable.
func DatePtr(v any, loc *time.Location) *time.Time {
	t, ok := Date(v, loc)
	if !ok {
		return nil
	}
	return &t
}

// Bool coerces the flag encodings used by the backend: true, "Yes", "true", 1.
func Bool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "yes", "true", "y", "1":
			return true
		}
	case float64:
		return x == 1
	case int:
		return x == 1
	case json.Number:
		return x.String() == "1"
	}
	return false
}

// String coerces scalar fields to trimmed strings.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64, int, int64, bool:
		return toString(x)
	}
	return ""
}

func toString(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// Strings coerces a field holding one string or a list of strings.
func Strings(v any) []string {
	switch x := v.(type) {
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return []string{s}
		}
	case []string:
		var out []string
		for _, s := range x {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range x {
			if s := String(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// first returns the first present, non-nil value among keys.
func (r Record) first(keys ...string) any {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
