package billstore

import (
	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/money"
)

// DefaultCategory is used for manually added items without a category.
const DefaultCategory = "uncategorized"

// LineItemInput carries the fields of an add or edit. Nil fields are left as
// they are (edit) or defaulted (add).
type LineItemInput struct {
	Description *string  `json:"description,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	TotalPrice  *float64 `json:"total_price,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// AddLineItem appends a line item with a fresh id.
func AddLineItem(b models.Bill, in LineItemInput) models.Bill {
	item := models.LineItem{Quantity: 1, Category: DefaultCategory}
	if in.Description == nil {
		reject("add_line_item", "missing description")
		return b
	}
	item, reason := applyItemInput(item, in)
	if reason != "" {
		reject("add_line_item", reason)
		return b
	}

	item.ID = newID(b, "item")
	out := b.Clone()
	out.LineItems = append(out.LineItems, item)
	return out
}

// EditLineItem updates the supplied fields of an existing item.
func EditLineItem(b models.Bill, id string, in LineItemInput) models.Bill {
	current, ok := b.LineItem(id)
	if !ok {
		reject("edit_line_item", "unknown item", "item_id", id)
		return b
	}
	item, reason := applyItemInput(current, in)
	if reason != "" {
		reject("edit_line_item", reason, "item_id", id)
		return b
	}

	out := b.Clone()
	for i := range out.LineItems {
		if out.LineItems[i].ID == id {
			out.LineItems[i] = item
		}
	}
	return out
}

// DeleteLineItem removes an item together with its split logic.
func DeleteLineItem(b models.Bill, id string) models.Bill {
	if _, ok := b.LineItem(id); !ok {
		reject("delete_line_item", "unknown item", "item_id", id)
		return b
	}

	out := b.Clone()
	out.LineItems = out.LineItems[:0]
	for _, item := range b.LineItems {
		if item.ID != id {
			out.LineItems = append(out.LineItems, item)
		}
	}
	out.SplitLogic = out.SplitLogic[:0]
	for _, s := range b.SplitLogic {
		if s.ItemID != id {
			s.Allocations = append([]models.SplitAllocation{}, s.Allocations...)
			out.SplitLogic = append(out.SplitLogic, s)
		}
	}
	return out
}

// applyItemInput validates in and merges it into item. It returns a non-empty
// reason when the input is rejected.
//
// The total is authoritative. An explicit total wins and the unit price is
// derived from it. A new unit price recomputes the total as unit × quantity. A
// quantity alone scales the existing total and re-derives the unit price.
func applyItemInput(item models.LineItem, in LineItemInput) (models.LineItem, string) {
	oldQuantity := item.Quantity
	if in.Description != nil {
		item.Description = sanitize(*in.Description, MaxDescriptionLength)
		if item.Description == "" {
			return item, "empty description"
		}
	}
	if in.Category != nil {
		if category := sanitize(*in.Category, MaxNameLength); category != "" {
			item.Category = category
		}
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return item, "quantity below 1"
		}
		item.Quantity = *in.Quantity
	}
	if in.UnitPrice != nil {
		if !validPrice(*in.UnitPrice) {
			return item, "invalid unit price"
		}
		item.UnitPrice = money.Round2(*in.UnitPrice)
	}

	switch {
	case in.TotalPrice != nil:
		if !validPrice(*in.TotalPrice) {
			return item, "invalid total price"
		}
		item.TotalPrice = money.Round2(*in.TotalPrice)
		item.UnitPrice = money.Round2(item.TotalPrice / float64(item.Quantity))
	case in.UnitPrice != nil:
		total := item.UnitPrice * float64(item.Quantity)
		if !validPrice(total) {
			return item, "total price out of range"
		}
		item.TotalPrice = money.Round2(total)
	case in.Quantity != nil && item.Quantity != oldQuantity:
		total := item.TotalPrice * float64(item.Quantity) / float64(oldQuantity)
		if !validPrice(total) {
			return item, "total price out of range"
		}
		item.TotalPrice = money.Round2(total)
		item.UnitPrice = money.Round2(item.TotalPrice / float64(item.Quantity))
	}

	return item, ""
}

func validPrice(v float64) bool {
	return money.Finite(v) && v >= 0
}
