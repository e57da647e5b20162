package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvariant is wrapped by every error returned from Validate.
var ErrInvariant = errors.New("bill invariant violated")

// Validate checks the bill invariants listed in the package documentation.
// It reports the first violation found.
func (b Bill) Validate() error {
	if len(b.Participants) == 0 {
		return fmt.Errorf("%w: no participants", ErrInvariant)
	}

	participants := make(map[string]bool, len(b.Participants))
	for _, p := range b.Participants {
		if p.ID == "" || p.ID == UnassignedID || participants[p.ID] {
			return fmt.Errorf("%w: participant id %q missing, reserved or duplicated", ErrInvariant, p.ID)
		}
		participants[p.ID] = true
	}

	items := make(map[string]bool, len(b.LineItems))
	for _, item := range b.LineItems {
		if item.ID == "" || items[item.ID] {
			return fmt.Errorf("%w: line item id %q missing or duplicated", ErrInvariant, item.ID)
		}
		items[item.ID] = true
		if item.Quantity < 1 {
			return fmt.Errorf("%w: line item %q has quantity %d", ErrInvariant, item.ID, item.Quantity)
		}
		if !nonNegative(item.UnitPrice) || !nonNegative(item.TotalPrice) {
			return fmt.Errorf("%w: line item %q has an invalid price", ErrInvariant, item.ID)
		}
	}

	split := make(map[string]bool, len(b.SplitLogic))
	for _, s := range b.SplitLogic {
		if !items[s.ItemID] {
			return fmt.Errorf("%w: split logic references unknown item %q", ErrInvariant, s.ItemID)
		}
		if split[s.ItemID] {
			return fmt.Errorf("%w: item %q has more than one split logic", ErrInvariant, s.ItemID)
		}
		split[s.ItemID] = true

		seen := make(map[string]bool, len(s.Allocations))
		for _, a := range s.Allocations {
			if !participants[a.ParticipantID] {
				return fmt.Errorf("%w: item %q allocated to unknown participant %q", ErrInvariant, s.ItemID, a.ParticipantID)
			}
			if seen[a.ParticipantID] {
				return fmt.Errorf("%w: item %q allocates participant %q twice", ErrInvariant, s.ItemID, a.ParticipantID)
			}
			seen[a.ParticipantID] = true
			if !nonNegative(a.Weight) || a.Weight == 0 {
				return fmt.Errorf("%w: item %q has weight %v", ErrInvariant, s.ItemID, a.Weight)
			}
		}
	}

	charges := make(map[string]bool, len(b.AdditionalCharges))
	for _, c := range b.AdditionalCharges {
		if c.ID == "" || charges[c.ID] {
			return fmt.Errorf("%w: charge id %q missing or duplicated", ErrInvariant, c.ID)
		}
		charges[c.ID] = true
		if !nonNegative(c.Value) {
			return fmt.Errorf("%w: charge %q has value %v", ErrInvariant, c.ID, c.Value)
		}
	}

	return nil
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
