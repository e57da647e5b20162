package billstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/money"
)

// Editable charge fields.
const (
	FieldLabel  = "label"
	FieldType   = "type"
	FieldSource = "source"
	FieldValue  = "value"
)

// ChargeInput describes a new additional charge. Blank fields are defaulted.
type ChargeInput struct {
	Label  string              `json:"label"`
	Source models.ChargeSource `json:"source"`
	Type   models.ChargeType   `json:"type"`
	Value  float64             `json:"value"`
}

// AddCharge appends a charge with a fresh id. Source defaults to user and type
// to fixed.
func AddCharge(b models.Bill, in ChargeInput) models.Bill {
	if !money.Finite(in.Value) {
		reject("add_charge", "invalid value", "value", in.Value)
		return b
	}

	charge := models.AdditionalCharge{
		Label:  sanitize(in.Label, MaxNameLength),
		Source: in.Source,
		Type:   in.Type,
		Value:  money.Round2(money.NonNegative(in.Value)),
	}
	if charge.Label == "" {
		charge.Label = fmt.Sprintf("Charge %d", len(b.AdditionalCharges)+1)
	}
	if charge.Source == "" {
		charge.Source = models.SourceUser
	}
	if charge.Type == "" {
		charge.Type = models.ChargeFixed
	}
	if !charge.Source.Valid() || !charge.Type.Valid() {
		reject("add_charge", "invalid source or type", "source", in.Source, "type", in.Type)
		return b
	}

	charge.ID = newID(b, "charge")
	out := b.Clone()
	out.AdditionalCharges = append(out.AdditionalCharges, charge)
	return out
}

// EditCharge sets one field of an existing charge. The value for FieldValue
// may be a number or a numeric string; negative values become 0.
func EditCharge(b models.Bill, id, field string, value any) models.Bill {
	charge, ok := b.Charge(id)
	if !ok {
		reject("edit_charge", "unknown charge", "charge_id", id)
		return b
	}

	switch field {
	case FieldLabel:
		label := sanitize(asString(value), MaxNameLength)
		if label == "" {
			reject("edit_charge", "empty label", "charge_id", id)
			return b
		}
		charge.Label = label
	case FieldType:
		typ := models.ChargeType(asString(value))
		if !typ.Valid() {
			reject("edit_charge", "invalid type", "charge_id", id, "type", value)
			return b
		}
		charge.Type = typ
	case FieldSource:
		source := models.ChargeSource(asString(value))
		if !source.Valid() {
			reject("edit_charge", "invalid source", "charge_id", id, "source", value)
			return b
		}
		charge.Source = source
	case FieldValue:
		v, ok := asNumber(value)
		if !ok {
			reject("edit_charge", "invalid value", "charge_id", id, "value", value)
			return b
		}
		charge.Value = money.Round2(money.NonNegative(v))
	default:
		reject("edit_charge", "unknown field", "charge_id", id, "field", field)
		return b
	}

	out := b.Clone()
	for i := range out.AdditionalCharges {
		if out.AdditionalCharges[i].ID == id {
			out.AdditionalCharges[i] = charge
		}
	}
	return out
}

// DeleteCharge removes a charge.
func DeleteCharge(b models.Bill, id string) models.Bill {
	if _, ok := b.Charge(id); !ok {
		reject("delete_charge", "unknown charge", "charge_id", id)
		return b
	}

	out := b.Clone()
	out.AdditionalCharges = out.AdditionalCharges[:0]
	for _, c := range b.AdditionalCharges {
		if c.ID != id {
			out.AdditionalCharges = append(out.AdditionalCharges, c)
		}
	}
	return out
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case fmt.Stringer:
		return strings.TrimSpace(s.String())
	}
	return ""
}

// asNumber accepts numeric Go types, json.Number and numeric strings.
// NaN and infinities are refused.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	return f, money.Finite(f)
}
