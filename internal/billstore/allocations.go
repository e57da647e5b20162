package billstore

import (
	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/money"
)

// SetAllocationWeight sets one participant's weight on one item.
//
// A weight of 0 removes the allocation. A positive weight replaces the
// existing allocation or appends a new one, creating ratio split logic for the
// item when it has none.
func SetAllocationWeight(b models.Bill, itemID, participantID string, weight float64) models.Bill {
	if !money.Finite(weight) || weight < 0 {
		reject("set_allocation_weight", "invalid weight", "item_id", itemID, "weight", weight)
		return b
	}
	if _, ok := b.LineItem(itemID); !ok {
		reject("set_allocation_weight", "unknown item", "item_id", itemID)
		return b
	}
	if _, ok := b.Participant(participantID); !ok {
		reject("set_allocation_weight", "unknown participant", "participant_id", participantID)
		return b
	}

	out := b.Clone()
	at := splitIndex(out, itemID)
	if at < 0 {
		if weight == 0 {
			return out
		}
		out.SplitLogic = append(out.SplitLogic, models.SplitLogic{ItemID: itemID, Method: models.MethodRatio})
		at = len(out.SplitLogic) - 1
	}

	logic := &out.SplitLogic[at]
	allocs := logic.Allocations[:0]
	found := false
	for _, a := range logic.Allocations {
		if a.ParticipantID != participantID {
			allocs = append(allocs, a)
			continue
		}
		found = true
		if weight > 0 {
			allocs = append(allocs, models.SplitAllocation{ParticipantID: participantID, Weight: weight})
		}
	}
	if !found && weight > 0 {
		allocs = append(allocs, models.SplitAllocation{ParticipantID: participantID, Weight: weight})
	}
	logic.Allocations = allocs
	return out
}

// SetSplitMethod changes the descriptive method of an item's split logic.
// Weights are left as they are.
func SetSplitMethod(b models.Bill, itemID string, method models.SplitMethod) models.Bill {
	if !method.Valid() {
		reject("set_split_method", "invalid method", "item_id", itemID, "method", method)
		return b
	}
	if _, ok := b.LineItem(itemID); !ok {
		reject("set_split_method", "unknown item", "item_id", itemID)
		return b
	}

	out := b.Clone()
	if at := splitIndex(out, itemID); at >= 0 {
		out.SplitLogic[at].Method = method
	} else {
		out.SplitLogic = append(out.SplitLogic, models.SplitLogic{ItemID: itemID, Method: method})
	}
	return out
}

// SplitEqually replaces an item's allocations with weight 1 for each listed
// participant. Unknown and repeated ids are ignored; an empty result is
// rejected.
func SplitEqually(b models.Bill, itemID string, participantIDs []string) models.Bill {
	if _, ok := b.LineItem(itemID); !ok {
		reject("split_equally", "unknown item", "item_id", itemID)
		return b
	}

	seen := make(map[string]bool, len(participantIDs))
	allocs := make([]models.SplitAllocation, 0, len(participantIDs))
	for _, id := range participantIDs {
		if _, ok := b.Participant(id); !ok || seen[id] {
			continue
		}
		seen[id] = true
		allocs = append(allocs, models.SplitAllocation{ParticipantID: id, Weight: 1})
	}
	if len(allocs) == 0 {
		reject("split_equally", "no known participants", "item_id", itemID)
		return b
	}

	out := b.Clone()
	logic := models.SplitLogic{ItemID: itemID, Method: models.MethodEqual, Allocations: allocs}
	if at := splitIndex(out, itemID); at >= 0 {
		out.SplitLogic[at] = logic
	} else {
		out.SplitLogic = append(out.SplitLogic, logic)
	}
	return out
}

func splitIndex(b models.Bill, itemID string) int {
	for i, s := range b.SplitLogic {
		if s.ItemID == itemID {
			return i
		}
	}
	return -1
}
