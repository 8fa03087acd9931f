package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// maxInputBytes caps the request payload read by ParseInput.
const maxInputBytes = 1 << 20

// ErrNotObject is returned by ParseInput when the payload is not a JSON object.
var ErrNotObject = errors.New("request body must be a JSON object")

// Input is a raw, untyped request object keyed by field name.
type Input map[string]json.RawMessage

// ParseInput reads a JSON object from r. An empty body yields an empty Input.
func ParseInput(r io.Reader) (Input, error) {
	if r == nil {
		return Input{}, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes))
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Input{}, nil
	}
	if data[0] != '{' {
		return nil, ErrNotObject
	}
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, ErrNotObject
	}
	if in == nil {
		in = Input{}
	}
	return in, nil
}

// InputOf builds an Input from Go values. Values that cannot be encoded are
// skipped.
func InputOf(values map[string]any) Input {
	in := make(Input, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			continue
		}
		in[key] = raw
	}
	return in
}

// With returns a copy of in with key set to value. A nil value removes the key.
func (in Input) With(key string, value any) Input {
	out := make(Input, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	if value == nil {
		delete(out, key)
		return out
	}
	raw, err := json.Marshal(value)
	if err != nil {
		delete(out, key)
		return out
	}
	out[key] = raw
	return out
}
