package calculator

import (
	"github.com/mmynk/fairshare/internal/models"
)

// UnassignedName is the display name of the unassigned bucket.
const UnassignedName = "Unassigned"

// ItemShare is one item's contribution to a participant.
type ItemShare struct {
	ItemID      string
	Description string
	TotalPrice  float64
	Share       float64 // Fraction of TotalPrice owed, in (0, 1]
}

// Amount returns the participant's cost for this item.
func (s ItemShare) Amount() float64 {
	return s.TotalPrice * s.Share
}

// ParticipantTotal is the calculated amount owed by one participant.
type ParticipantTotal struct {
	ID   string
	Name string

	// BaseAmount is the sum of this participant's item shares, before charges.
	BaseAmount float64

	// ChargeShares maps charge ID to this participant's share of that charge.
	ChargeShares map[string]float64

	// ChargesTotal is the sum of ChargeShares.
	ChargesTotal float64

	// Total is BaseAmount + ChargesTotal.
	Total float64

	Items []ItemShare
}

// IsUnassigned reports whether this is the synthetic unassigned bucket.
func (p *ParticipantTotal) IsUnassigned() bool {
	return p.ID == models.UnassignedID
}

// Totals is the output of ComputeTotals.
type Totals struct {
	Subtotal float64

	// ChargeTotals maps charge ID to its absolute amount.
	ChargeTotals map[string]float64

	// TotalCharges is the sum of ChargeTotals.
	TotalCharges float64

	// GrandTotal is Subtotal + TotalCharges.
	GrandTotal float64

	// ByParticipant is keyed by participant ID; the unassigned bucket is keyed
	// by models.UnassignedID.
	ByParticipant map[string]*ParticipantTotal

	// Order lists ByParticipant keys in bill order, unassigned last.
	Order []string
}

// Participants returns every participant total in bill order, unassigned last.
func (t Totals) Participants() []*ParticipantTotal {
	out := make([]*ParticipantTotal, 0, len(t.Order))
	for _, id := range t.Order {
		out = append(out, t.ByParticipant[id])
	}
	return out
}

// Visible is Participants without the unassigned bucket when it owes nothing.
func (t Totals) Visible() []*ParticipantTotal {
	out := make([]*ParticipantTotal, 0, len(t.Order))
	for _, p := range t.Participants() {
		if p.IsUnassigned() && p.Total == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Unassigned returns the unassigned bucket.
func (t Totals) Unassigned() *ParticipantTotal {
	return t.ByParticipant[models.UnassignedID]
}

// ComputeTotals computes how much each participant owes, including a
// proportional share of every additional charge.
//
// Algorithm:
//   - Each item is divided among its allocations by weight / total weight.
//     Items without allocations go to the unassigned bucket.
//   - Percentage charges are subtotal × value/100; fixed charges are value.
//   - Each participant pays charge × (base_amount / subtotal).
//
// ComputeTotals is pure and never returns NaN or Inf for a valid bill.
// Nothing is rounded here; rounding is a display concern.
func ComputeTotals(bill models.Bill) Totals {
	totals := Totals{
		ChargeTotals:  make(map[string]float64, len(bill.AdditionalCharges)),
		ByParticipant: make(map[string]*ParticipantTotal, len(bill.Participants)+1),
		Order:         make([]string, 0, len(bill.Participants)+1),
	}

	// Initialize one accumulator per participant, plus unassigned
	for _, p := range bill.Participants {
		totals.add(&ParticipantTotal{ID: p.ID, Name: p.Name})
	}
	unassigned := &ParticipantTotal{ID: models.UnassignedID, Name: UnassignedName}
	totals.add(unassigned)

	splits := make(map[string]models.SplitLogic, len(bill.SplitLogic))
	for _, s := range bill.SplitLogic {
		splits[s.ItemID] = s
	}

	for _, item := range bill.LineItems {
		totals.Subtotal += item.TotalPrice

		logic := splits[item.ID]
		totalWeight := logic.TotalWeight()
		if len(logic.Allocations) == 0 || totalWeight <= 0 {
			unassigned.credit(item, 1)
			continue
		}

		for _, alloc := range logic.Allocations {
			pt, ok := totals.ByParticipant[alloc.ParticipantID]
			if !ok || pt.IsUnassigned() {
				continue
			}
			pt.credit(item, alloc.Weight/totalWeight)
		}
	}

	for _, c := range bill.AdditionalCharges {
		amount := c.Amount(totals.Subtotal)
		totals.ChargeTotals[c.ID] += amount
		totals.TotalCharges += amount
	}

	// Apply proportional charges and calculate totals
	for _, pt := range totals.Participants() {
		var shareOfSubtotal float64
		if totals.Subtotal > 0 {
			shareOfSubtotal = pt.BaseAmount / totals.Subtotal
		}
		for _, c := range bill.AdditionalCharges {
			share := totals.ChargeTotals[c.ID] * shareOfSubtotal
			pt.ChargeShares[c.ID] = share
			pt.ChargesTotal += share
		}
		pt.Total = pt.BaseAmount + pt.ChargesTotal
	}

	totals.GrandTotal = totals.Subtotal + totals.TotalCharges
	return totals
}

func (t *Totals) add(pt *ParticipantTotal) {
	pt.ChargeShares = make(map[string]float64)
	t.ByParticipant[pt.ID] = pt
	t.Order = append(t.Order, pt.ID)
}

func (p *ParticipantTotal) credit(item models.LineItem, share float64) {
	p.BaseAmount += item.TotalPrice * share
	p.Items = append(p.Items, ItemShare{
		ItemID:      item.ID,
		Description: item.Description,
		TotalPrice:  item.TotalPrice,
		Share:       share,
	})
}
