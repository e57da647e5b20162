// Package schema decodes the JSON payload produced by the receipt extraction model.
//
// Model output is loosely typed: numbers arrive as strings, objects go missing,
// arrays contain junk. Every field type in this package decodes leniently and
// records whether a usable value was present, so the normalize package can
// repair the payload without ever inspecting untyped data.
package schema

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

// Text is a JSON string field. Any non-string value decodes as absent.
type Text struct {
	Value string
	Valid bool
}

// T returns a present Text.
func T(s string) Text { return Text{Value: s, Valid: true} }

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text{}
	var s string
	if err := json.Unmarshal(data, &s); err != nil || bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}
	*t = Text{Value: s, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return jsonNull, nil
	}
	return json.Marshal(t.Value)
}

// Trimmed returns the trimmed value, or "" when absent.
func (t Text) Trimmed() string {
	if !t.Valid {
		return ""
	}
	return strings.TrimSpace(t.Value)
}

// Number is a JSON number field. Numeric strings are accepted; anything else,
// including non-finite values, decodes as absent.
type Number struct {
	Value float64
	Valid bool
}

// N returns a present Number.
func N(v float64) Number { return Number{Value: v, Valid: true} }

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if !bytes.Equal(bytes.TrimSpace(data), jsonNull) {
			n.set(f)
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		n.set(f)
	}
	return nil
}

func (n *Number) set(f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return
	}
	*n = Number{Value: f, Valid: true}
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return jsonNull, nil
	}
	return json.Marshal(n.Value)
}

// Or returns the value, or fallback when absent.
func (n Number) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Value
}

// List is a JSON array of objects. A value that is not an array decodes as an
// empty list; an element that is not an object decodes as the zero T, so
// positions are preserved.
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	*l = nil
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil
	}
	out := make(List[T], len(elems))
	for i, elem := range elems {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			continue
		}
		out[i] = v
	}
	*l = out
	return nil
}

// Object is a nested JSON object. Non-object values decode as absent.
type Object[T any] struct {
	Value T
	Valid bool
}

// O returns a present Object.
func O[T any](v T) Object[T] { return Object[T]{Value: v, Valid: true} }

// UnmarshalJSON implements json.Unmarshaler.
func (o *Object[T]) UnmarshalJSON(data []byte) error {
	*o = Object[T]{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil
	}
	*o = Object[T]{Value: v, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o Object[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return jsonNull, nil
	}
	return json.Marshal(o.Value)
}

// RawBill is the extraction payload as decoded, before normalization.
type RawBill struct {
	Meta              Object[RawMeta]      `json:"meta"`
	Participants      List[RawParticipant] `json:"participants"`
	LineItems         List[RawLineItem]    `json:"line_items"`
	SplitLogic        List[RawSplitLogic]  `json:"split_logic"`
	AdditionalCharges List[RawCharge]      `json:"additional_charges"`
	Modifiers         Object[RawModifiers] `json:"modifiers"`
}

// RawMeta is the decoded meta object.
type RawMeta struct {
	Currency Text `json:"currency"`
	Notes    Text `json:"notes"`
}

// RawParticipant is a decoded participant.
type RawParticipant struct {
	ID   Text `json:"id"`
	Name Text `json:"name"`
}

// RawLineItem is a decoded line item.
type RawLineItem struct {
	ID          Text   `json:"id"`
	Description Text   `json:"description"`
	Quantity    Number `json:"quantity"`
	UnitPrice   Number `json:"unit_price"`
	TotalPrice  Number `json:"total_price"`
	Category    Text   `json:"category"`
}

// RawSplitLogic is a decoded split logic entry.
type RawSplitLogic struct {
	ItemID      Text                `json:"item_id"`
	Method      Text                `json:"method"`
	Allocations List[RawAllocation] `json:"allocations"`
}

// RawAllocation is a decoded allocation.
type RawAllocation struct {
	ParticipantID Text   `json:"participant_id"`
	Weight        Number `json:"weight"`
}

// RawCharge is a decoded additional charge. The legacy tax/tip modifiers use the
// same shape without id and label.
type RawCharge struct {
	ID     Text   `json:"id"`
	Label  Text   `json:"label"`
	Source Text   `json:"source"`
	Type   Text   `json:"type"`
	Value  Number `json:"value"`
}

// RawModifiers is the earlier fixed tax/tip model.
type RawModifiers struct {
	Tax  Object[RawCharge] `json:"tax"`
	Tip  Object[RawCharge] `json:"tip"`
	Fees List[RawCharge]   `json:"fees"`
}
