package extract

import (
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to answer with the bill payload only.
const SystemPrompt = `You are a receipt parsing engine. Return ONLY raw JSON. No markdown, no explanation.
Input: An image of a receipt and a text description of how to split it.
Goal: Extract items and map them to people based on the text using a 'weight' system.
JSON Schema specific instructions:
1. 'participants': Extract names from the prompt. If none, use generic "Person 1", "Person 2". Use "Me" when referring to the user.
2. 'line_items': Extract all items, qty, price.
3. 'split_logic': For EACH item, create an entry.
   - If the prompt says "Alice had 2/3, Bob 1/3", set allocations: [{participant_id: <Alice's id>, weight: 2}, {participant_id: <Bob's id>, weight: 1}].
   - If "Alice and Bob shared", set weights to 1 for both.
   - If unassigned/unknown, leave allocations empty.
4. 'additional_charges': Look for tax, service fees and other surcharges on the receipt. Look for a tip in the receipt or the prompt.
   - type: "percentage" or "fixed". If percentage, 'value' is the whole number (20 for 20%, not 0.2).
   - If an exact tip amount is shown on the receipt, prefer "fixed" over "percentage".
   - source: "receipt" when printed on the receipt, "user_prompt" when taken from the instructions.
Output this exact structure:
{
  "meta": { "currency": "string", "notes": "string" },
  "participants": [ { "id": "string", "name": "string" } ],
  "line_items": [ { "id": "string", "description": "string", "quantity": number, "unit_price": number, "total_price": number, "category": "string" } ],
  "split_logic": [
    {
      "item_id": "string",
      "method": "explicit" | "equal" | "ratio",
      "allocations": [ { "participant_id": "string", "weight": number } ]
    }
  ],
  "additional_charges": [
    { "id": "string", "label": "string", "source": "receipt" | "user_prompt", "type": "fixed" | "percentage", "value": number }
  ]
}`

// userText builds the text block sent alongside the receipt image.
func userText(instructions string, hasImage bool) string {
	var b strings.Builder
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		instructions = "(none)"
	}
	fmt.Fprintf(&b, "User Instructions: %s", instructions)
	if !hasImage {
		b.WriteString("\nNo receipt image was provided; build the bill from the instructions alone.")
	}
	return b.String()
}
