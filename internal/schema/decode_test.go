package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
  "meta": {"currency": "USD", "notes": "Dinner"},
  "participants": [{"id": "p1", "name": "Alex"}],
  "line_items": [{"id": "i1", "description": "Burger", "quantity": 1, "unit_price": 16.5, "total_price": 16.5}],
  "split_logic": [{"item_id": "i1", "method": "explicit", "allocations": [{"participant_id": "p1", "weight": 1}]}],
  "additional_charges": [{"id": "tip", "label": "Tip", "source": "user_prompt", "type": "percentage", "value": 20}]
}`

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErr    bool
		wantReason string
	}{
		{name: "valid payload", input: validPayload},
		{
			name:  "legacy modifiers instead of charges",
			input: `{"participants": [], "line_items": [], "split_logic": [], "modifiers": {"tax": {"type": "fixed", "value": 1}}}`,
		},
		{name: "not JSON", input: `Sorry, I can't read this receipt.`, wantErr: true, wantReason: "payload is not a JSON object"},
		{name: "array at top level", input: `[1, 2]`, wantErr: true, wantReason: "payload is not a JSON object"},
		{
			name:       "missing split logic",
			input:      `{"participants": [], "line_items": [], "additional_charges": []}`,
			wantErr:    true,
			wantReason: `missing array "split_logic"`,
		},
		{
			name:       "participants is not an array",
			input:      `{"participants": {}, "line_items": [], "split_logic": [], "additional_charges": []}`,
			wantErr:    true,
			wantReason: `missing array "participants"`,
		},
		{
			name:       "no charges of either shape",
			input:      `{"participants": [], "line_items": [], "split_logic": []}`,
			wantErr:    true,
			wantReason: `missing array "additional_charges"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Decode([]byte(tt.input))
			if !tt.wantErr {
				require.NoError(t, err)
				require.NotNil(t, raw)
				return
			}

			require.Error(t, err)
			assert.Nil(t, raw)
			assert.True(t, errors.Is(err, ErrUnusable))
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantReason, perr.Reason)
		})
	}
}

func TestDecode_Fields(t *testing.T) {
	raw, err := Decode([]byte(validPayload))
	require.NoError(t, err)

	assert.True(t, raw.Meta.Valid)
	assert.Equal(t, "USD", raw.Meta.Value.Currency.Value)
	require.Len(t, raw.LineItems, 1)
	assert.Equal(t, N(16.5), raw.LineItems[0].TotalPrice)
	require.Len(t, raw.SplitLogic, 1)
	assert.Equal(t, T("p1"), raw.SplitLogic[0].Allocations[0].ParticipantID)
	assert.Equal(t, N(20), raw.AdditionalCharges[0].Value)
	assert.False(t, raw.Modifiers.Valid)
}

func TestExtractObject(t *testing.T) {
	text := "Here is the bill:\n```json\n{\"a\": {\"b\": 1}}\n```\nLet me know!"
	got, err := ExtractObject([]byte(text))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": {"b": 1}}`, string(got))

	_, err = ExtractObject([]byte("no braces here"))
	assert.ErrorIs(t, err, ErrUnusable)

	_, err = ExtractObject([]byte("} backwards {"))
	assert.ErrorIs(t, err, ErrUnusable)
}

func TestDecodeLenient(t *testing.T) {
	for _, input := range []string{"", "null", "42", `"text"`, "[]", "{not json", `{"participants": 5}`} {
		raw := DecodeLenient([]byte(input))
		require.NotNil(t, raw, "input %q", input)
		assert.Empty(t, raw.Participants, "input %q", input)
	}
}

func TestLenientFieldTypes(t *testing.T) {
	var item RawLineItem
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 7,
		"description": null,
		"quantity": "3",
		"unit_price": "abc",
		"total_price": " 12.50 ",
		"category": ["food"]
	}`), &item))

	assert.False(t, item.ID.Valid)
	assert.False(t, item.Description.Valid)
	assert.Equal(t, N(3), item.Quantity)
	assert.False(t, item.UnitPrice.Valid)
	assert.Equal(t, N(12.5), item.TotalPrice)
	assert.False(t, item.Category.Valid)

	var nan Number
	require.NoError(t, json.Unmarshal([]byte(`"NaN"`), &nan))
	assert.False(t, nan.Valid)
	assert.Equal(t, 4.0, nan.Or(4))
}

func TestList_PreservesPositions(t *testing.T) {
	var items List[RawParticipant]
	require.NoError(t, json.Unmarshal([]byte(`[{"name": "A"}, 12, "junk", {"name": "D"}]`), &items))

	require.Len(t, items, 4)
	assert.Equal(t, "A", items[0].Name.Value)
	assert.Equal(t, RawParticipant{}, items[1])
	assert.Equal(t, RawParticipant{}, items[2])
	assert.Equal(t, "D", items[3].Name.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"not": "a list"}`), &items))
	assert.Nil(t, items)
}

func TestObject_NonObjectIsAbsent(t *testing.T) {
	var m Object[RawModifiers]
	require.NoError(t, json.Unmarshal([]byte(`"tax included"`), &m))
	assert.False(t, m.Valid)

	require.NoError(t, json.Unmarshal([]byte(`{"tip": {"value": 15}}`), &m))
	assert.True(t, m.Valid)
	assert.True(t, m.Value.Tip.Valid)
	assert.False(t, m.Value.Tax.Valid)
}
