// Package normalize repairs an extraction payload into a Bill that satisfies
// every model invariant. Normalization never fails.
package normalize

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/money"
	"github.com/mmynk/fairshare/internal/schema"
)

const (
	// DefaultCurrency is used when the payload names none.
	DefaultCurrency = "USD"

	// DefaultCategory is assigned to items without a category.
	DefaultCategory = "uncategorized"

	// maxQuantity bounds quantities so they always fit in an int.
	maxQuantity = 1_000_000

	// weightPlaces is the precision weights are stored with.
	weightPlaces = 3
)

// IDFunc returns a new identifier with the given prefix.
// Collisions are tolerated; the normalizer retries until the id is unused.
type IDFunc func(prefix string) string

// RandomID returns prefix followed by eight random hex characters.
func RandomID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Normalizer converts raw payloads into valid bills.
type Normalizer struct {
	NewID IDFunc
}

// New returns a Normalizer using RandomID.
func New() *Normalizer {
	return &Normalizer{NewID: RandomID}
}

// Normalize repairs raw using a default Normalizer.
func Normalize(raw *schema.RawBill) models.Bill {
	return New().Normalize(raw)
}

// NormalizeJSON decodes data leniently and normalizes it. Any input, including
// invalid JSON, yields a valid bill.
func NormalizeJSON(data []byte) models.Bill {
	return Normalize(schema.DecodeLenient(data))
}

// Normalize repairs raw into a bill satisfying every model invariant.
func (n *Normalizer) Normalize(raw *schema.RawBill) models.Bill {
	if raw == nil {
		raw = &schema.RawBill{}
	}

	ids := n.newIDPool()
	ids.forbid(models.UnassignedID)
	for _, p := range raw.Participants {
		ids.reserve(p.ID.Trimmed())
	}
	for _, item := range raw.LineItems {
		ids.reserve(item.ID.Trimmed())
	}
	for _, c := range raw.AdditionalCharges {
		ids.reserve(c.ID.Trimmed())
	}

	bill := models.Bill{
		Meta:         n.meta(raw.Meta),
		Participants: participants(ids, raw.Participants),
		LineItems:    lineItems(ids, raw.LineItems),
	}
	bill.SplitLogic = splitLogic(raw.SplitLogic, bill.Participants, bill.LineItems)
	bill.AdditionalCharges = charges(ids, raw.AdditionalCharges, raw.Modifiers)

	return bill
}

func (n *Normalizer) meta(raw schema.Object[schema.RawMeta]) models.Meta {
	currency := strings.ToUpper(raw.Value.Currency.Trimmed())
	if currency == "" {
		currency = DefaultCurrency
	}
	return models.Meta{
		Currency: currency,
		Notes:    raw.Value.Notes.Value,
	}
}

func participants(ids *idPool, raw schema.List[schema.RawParticipant]) []models.Participant {
	if len(raw) == 0 {
		raw = schema.List[schema.RawParticipant]{{Name: schema.T("Person 1")}}
	}

	out := make([]models.Participant, len(raw))
	for i, p := range raw {
		name := p.Name.Trimmed()
		if name == "" {
			name = fmt.Sprintf("Person %d", i+1)
		}
		out[i] = models.Participant{
			ID:   ids.claim("participant", p.ID.Trimmed()),
			Name: name,
		}
	}
	return out
}

func lineItems(ids *idPool, raw schema.List[schema.RawLineItem]) []models.LineItem {
	out := make([]models.LineItem, len(raw))
	for i, item := range raw {
		quantity := clampQuantity(item.Quantity.Or(1))

		total := item.TotalPrice.Value
		if !item.TotalPrice.Valid {
			total = item.UnitPrice.Or(0) * float64(quantity)
		}
		total = money.Round2(money.NonNegative(total))

		description := item.Description.Trimmed()
		if description == "" {
			description = fmt.Sprintf("Item %d", i+1)
		}
		category := item.Category.Trimmed()
		if category == "" {
			category = DefaultCategory
		}

		out[i] = models.LineItem{
			ID:          ids.claim("item", item.ID.Trimmed()),
			Description: description,
			Quantity:    quantity,
			UnitPrice:   money.Round2(total / float64(quantity)),
			TotalPrice:  total,
			Category:    category,
		}
	}
	return out
}

func clampQuantity(q float64) int {
	q = math.Round(q)
	switch {
	case !money.Finite(q) || q < 1:
		return 1
	case q > maxQuantity:
		return maxQuantity
	}
	return int(q)
}

// splitLogic keeps entries that reference known items. When two entries target
// the same item the later one wins but keeps the earlier entry's position.
func splitLogic(raw schema.List[schema.RawSplitLogic], participants []models.Participant, items []models.LineItem) []models.SplitLogic {
	knownParticipants := make(map[string]bool, len(participants))
	for _, p := range participants {
		knownParticipants[p.ID] = true
	}
	knownItems := make(map[string]bool, len(items))
	for _, item := range items {
		knownItems[item.ID] = true
	}

	out := make([]models.SplitLogic, 0, len(raw))
	position := make(map[string]int)

	for i, entry := range raw {
		itemID := entry.ItemID.Trimmed()
		if itemID == "" && i < len(items) {
			itemID = items[i].ID
		}
		if !knownItems[itemID] {
			slog.Debug("Dropping split logic for unknown item", "index", i, "item_id", itemID)
			continue
		}

		method := models.SplitMethod(entry.Method.Trimmed())
		if !method.Valid() {
			method = models.MethodRatio
		}

		logic := models.SplitLogic{
			ItemID:      itemID,
			Method:      method,
			Allocations: allocations(entry.Allocations, knownParticipants, itemID),
		}

		if at, ok := position[itemID]; ok {
			out[at] = logic
			continue
		}
		position[itemID] = len(out)
		out = append(out, logic)
	}

	return out
}

func allocations(raw schema.List[schema.RawAllocation], known map[string]bool, itemID string) []models.SplitAllocation {
	out := make([]models.SplitAllocation, 0, len(raw))
	position := make(map[string]int, len(raw))

	for _, a := range raw {
		pid := a.ParticipantID.Trimmed()
		weight := money.Round(a.Weight.Or(0), weightPlaces)
		if !known[pid] || weight <= 0 {
			slog.Debug("Dropping allocation",
				"item_id", itemID,
				"participant_id", pid,
				"weight", a.Weight.Value,
			)
			continue
		}
		if at, ok := position[pid]; ok {
			out[at].Weight = weight
			continue
		}
		position[pid] = len(out)
		out = append(out, models.SplitAllocation{ParticipantID: pid, Weight: weight})
	}

	return out
}

func charges(ids *idPool, raw schema.List[schema.RawCharge], modifiers schema.Object[schema.RawModifiers]) []models.AdditionalCharge {
	type pending struct {
		raw           schema.RawCharge
		id            string
		label         string
		defaultSource models.ChargeSource
	}

	var all []pending
	for i, c := range raw {
		all = append(all, pending{raw: c, label: fmt.Sprintf("Charge %d", i+1), defaultSource: models.SourceReceipt})
	}

	// The earlier tax/tip model: both are always present, with fixed ids.
	if modifiers.Valid {
		m := modifiers.Value
		all = append(all,
			pending{raw: m.Tax.Value, id: "tax", label: "Tax", defaultSource: models.SourceReceipt},
			pending{raw: m.Tip.Value, id: "tip", label: "Tip", defaultSource: models.SourceUserPrompt},
		)
		for i, fee := range m.Fees {
			all = append(all, pending{raw: fee, label: fmt.Sprintf("Fee %d", i+1), defaultSource: models.SourceReceipt})
		}
	}

	for _, p := range all {
		ids.reserve(p.id)
	}

	out := make([]models.AdditionalCharge, len(all))
	for i, p := range all {
		id := p.raw.ID.Trimmed()
		if id == "" {
			id = p.id
		}

		label := p.raw.Label.Trimmed()
		if label == "" {
			label = p.label
		}

		source := models.ChargeSource(p.raw.Source.Trimmed())
		if !source.Valid() {
			source = p.defaultSource
		}

		typ := models.ChargeType(p.raw.Type.Trimmed())
		if !typ.Valid() {
			typ = models.ChargeFixed
		}

		out[i] = models.AdditionalCharge{
			ID:     ids.claim("charge", id),
			Label:  label,
			Source: source,
			Type:   typ,
			Value:  money.Round2(money.NonNegative(p.raw.Value.Or(0))),
		}
	}
	return out
}
