package schema

import "github.com/mmynk/fairshare/internal/models"

// FromBill projects a normalized bill back into the raw payload shape.
// Normalizing the result yields the same bill.
func FromBill(b models.Bill) *RawBill {
	raw := &RawBill{
		Meta: O(RawMeta{
			Currency: T(b.Meta.Currency),
			Notes:    T(b.Meta.Notes),
		}),
		Participants:      make(List[RawParticipant], len(b.Participants)),
		LineItems:         make(List[RawLineItem], len(b.LineItems)),
		SplitLogic:        make(List[RawSplitLogic], len(b.SplitLogic)),
		AdditionalCharges: make(List[RawCharge], len(b.AdditionalCharges)),
	}

	for i, p := range b.Participants {
		raw.Participants[i] = RawParticipant{ID: T(p.ID), Name: T(p.Name)}
	}

	for i, item := range b.LineItems {
		raw.LineItems[i] = RawLineItem{
			ID:          T(item.ID),
			Description: T(item.Description),
			Quantity:    N(float64(item.Quantity)),
			UnitPrice:   N(item.UnitPrice),
			TotalPrice:  N(item.TotalPrice),
			Category:    T(item.Category),
		}
	}

	for i, s := range b.SplitLogic {
		allocs := make(List[RawAllocation], len(s.Allocations))
		for j, a := range s.Allocations {
			allocs[j] = RawAllocation{ParticipantID: T(a.ParticipantID), Weight: N(a.Weight)}
		}
		raw.SplitLogic[i] = RawSplitLogic{
			ItemID:      T(s.ItemID),
			Method:      T(string(s.Method)),
			Allocations: allocs,
		}
	}

	for i, c := range b.AdditionalCharges {
		raw.AdditionalCharges[i] = RawCharge{
			ID:     T(c.ID),
			Label:  T(c.Label),
			Source: T(string(c.Source)),
			Type:   T(string(c.Type)),
			Value:  N(c.Value),
		}
	}

	return raw
}
