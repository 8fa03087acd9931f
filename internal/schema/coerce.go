package schema

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// CoercionError is returned by the coercing field types when a raw value
// cannot be converted. Its message is reported to the client verbatim.
type CoercionError struct {
	Message string
}

func (e *CoercionError) Error() string { return e.Message }

// Bool accepts a JSON boolean or the strings "true" and "false".
type Bool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bool) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", `"true"`:
		*b = true
		return nil
	case "false", `"false"`:
		*b = false
		return nil
	}
	return &CoercionError{Message: "Expected boolean, received " + jsonKind(data)}
}

// Int accepts a JSON integer or a string holding one.
type Int int64

// UnmarshalJSON implements json.Unmarshaler.
func (i *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &CoercionError{Message: "Expected number, received nan"}
		}
		raw = strings.TrimSpace(s)
	} else if jsonKind(data) != "number" {
		return &CoercionError{Message: "Expected number, received " + jsonKind(data)}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return &CoercionError{Message: "Expected number, received nan"}
		}
		if f != float64(int64(f)) {
			return &CoercionError{Message: "Expected integer, received float"}
		}
		n = int64(f)
	}
	*i = Int(n)
	return nil
}

// dateLayouts are tried in order when coercing a string to a Time.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Time accepts a date string in one of the supported layouts or a number of
// milliseconds since the Unix epoch.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch jsonKind(data) {
	case "number":
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return &CoercionError{Message: "Invalid date"}
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	case "string":
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &CoercionError{Message: "Invalid date"}
		}
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed.UTC()
				return nil
			}
		}
	}
	return &CoercionError{Message: "Invalid date"}
}

// Ptr returns a pointer to the underlying time, or nil for a nil receiver.
func (t *Time) Ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

// jsonKind names the JSON type of a raw value the way validation messages do.
func jsonKind(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "undefined"
	}
	switch data[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
