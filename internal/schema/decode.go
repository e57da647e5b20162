package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnusable is wrapped by every ParseError.
var ErrUnusable = errors.New("unusable extraction payload")

// ParseError reports why a payload was rejected at the extraction boundary.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrUnusable, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrUnusable, e.Reason)
}

// Unwrap exposes the underlying cause together with ErrUnusable.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnusable, e.Err}
	}
	return []error{ErrUnusable}
}

// requiredArrays must be present as arrays for a payload to be usable.
var requiredArrays = []string{"participants", "line_items", "split_logic"}

// ExtractObject returns the text between the first '{' and the last '}',
// dropping any prose or code fences the model wrapped around its JSON.
func ExtractObject(text []byte) ([]byte, error) {
	start := bytes.IndexByte(text, '{')
	end := bytes.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, &ParseError{Reason: "no JSON object found"}
	}
	return text[start : end+1], nil
}

// Decode strictly checks the payload shape and then decodes it leniently.
// It fails when data is not a JSON object or a required top-level array is
// missing; individual malformed fields are left for the normalizer.
func Decode(data []byte) (*RawBill, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &ParseError{Reason: "payload is not a JSON object", Err: err}
	}

	for _, key := range requiredArrays {
		if !isArray(top[key]) {
			return nil, &ParseError{Reason: fmt.Sprintf("missing array %q", key)}
		}
	}
	if !isArray(top["additional_charges"]) && !isObject(top["modifiers"]) {
		return nil, &ParseError{Reason: `missing array "additional_charges"`}
	}

	var raw RawBill
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Reason: "payload does not match schema", Err: err}
	}
	return &raw, nil
}

// DecodeLenient never fails: anything that is not a JSON object yields an
// empty RawBill, which normalizes to a one-person bill with no items.
func DecodeLenient(data []byte) *RawBill {
	var raw RawBill
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &raw
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return &RawBill{}
	}
	return &raw
}

func isArray(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '['
}

func isObject(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '{'
}
