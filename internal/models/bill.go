package models

// SplitMethod records how an item's allocation was derived.
// It is descriptive only: the calculator always normalizes by weight sum.
type SplitMethod string

const (
	MethodExplicit SplitMethod = "explicit"
	MethodEqual    SplitMethod = "equal"
	MethodRatio    SplitMethod = "ratio"
)

// Valid reports whether m is one of the known split methods.
func (m SplitMethod) Valid() bool {
	switch m {
	case MethodExplicit, MethodEqual, MethodRatio:
		return true
	}
	return false
}

// ChargeSource records where an additional charge came from.
type ChargeSource string

const (
	SourceReceipt    ChargeSource = "receipt"
	SourceUserPrompt ChargeSource = "user_prompt"
	SourceUser       ChargeSource = "user"
)

// Valid reports whether s is one of the known charge sources.
func (s ChargeSource) Valid() bool {
	switch s {
	case SourceReceipt, SourceUserPrompt, SourceUser:
		return true
	}
	return false
}

// ChargeType selects how a charge's Value is interpreted.
type ChargeType string

const (
	// ChargeFixed means Value is an absolute amount in the bill currency.
	ChargeFixed ChargeType = "fixed"
	// ChargePercentage means Value is a whole-number percent of the subtotal (20 = 20%).
	ChargePercentage ChargeType = "percentage"
)

// Valid reports whether t is one of the known charge types.
func (t ChargeType) Valid() bool {
	return t == ChargeFixed || t == ChargePercentage
}

// Meta carries bill-level metadata.
type Meta struct {
	// Currency is an ISO 4217 code, e.g. "USD".
	Currency string `json:"currency"`

	// Notes is free text from the extraction (merchant, date, caveats).
	Notes string `json:"notes"`
}

// UnassignedID is reserved for the synthetic bucket that collects unassigned
// items. No participant may use it.
const UnassignedID = "unassigned"

// Participant is one person splitting the bill.
type Participant struct {
	// ID is unique within the bill and never changes once assigned.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`
}

// LineItem is a single line on the receipt.
type LineItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`

	// Quantity is always >= 1.
	Quantity int `json:"quantity"`

	// UnitPrice is informational; it is kept consistent with TotalPrice on edit
	// but never used by the calculator.
	UnitPrice float64 `json:"unit_price"`

	// TotalPrice is the authoritative cost of the line.
	TotalPrice float64 `json:"total_price"`

	// Category is a free-form label such as "food" or "alcohol".
	Category string `json:"category"`
}

// SplitAllocation is one participant's relative weight on an item.
type SplitAllocation struct {
	ParticipantID string  `json:"participant_id"`
	Weight        float64 `json:"weight"`
}

// SplitLogic describes how one line item is divided.
// An item without SplitLogic, or with no allocations, is unassigned.
type SplitLogic struct {
	ItemID      string            `json:"item_id"`
	Method      SplitMethod       `json:"method"`
	Allocations []SplitAllocation `json:"allocations"`
}

// TotalWeight returns the sum of all allocation weights.
func (s SplitLogic) TotalWeight() float64 {
	var sum float64
	for _, a := range s.Allocations {
		sum += a.Weight
	}
	return sum
}

// AdditionalCharge is a bill-level surcharge distributed in proportion to
// each participant's share of the subtotal.
type AdditionalCharge struct {
	ID     string       `json:"id"`
	Label  string       `json:"label"`
	Source ChargeSource `json:"source"`
	Type   ChargeType   `json:"type"`
	Value  float64      `json:"value"`
}

// Amount returns the absolute amount of the charge for the given subtotal.
func (c AdditionalCharge) Amount(subtotal float64) float64 {
	if c.Type == ChargePercentage {
		return subtotal * (c.Value / 100)
	}
	return c.Value
}

// Bill is the complete state of one split.
type Bill struct {
	Meta              Meta               `json:"meta"`
	Participants      []Participant      `json:"participants"`
	LineItems         []LineItem         `json:"line_items"`
	SplitLogic        []SplitLogic       `json:"split_logic"`
	AdditionalCharges []AdditionalCharge `json:"additional_charges"`
}

// Clone returns a deep copy of the bill. Mutations on the copy never reach b.
func (b Bill) Clone() Bill {
	out := Bill{
		Meta:              b.Meta,
		Participants:      append([]Participant{}, b.Participants...),
		LineItems:         append([]LineItem{}, b.LineItems...),
		SplitLogic:        make([]SplitLogic, len(b.SplitLogic)),
		AdditionalCharges: append([]AdditionalCharge{}, b.AdditionalCharges...),
	}
	for i, s := range b.SplitLogic {
		s.Allocations = append([]SplitAllocation{}, s.Allocations...)
		out.SplitLogic[i] = s
	}
	return out
}

// Participant returns the participant with the given id.
func (b Bill) Participant(id string) (Participant, bool) {
	for _, p := range b.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// LineItem returns the line item with the given id.
func (b Bill) LineItem(id string) (LineItem, bool) {
	for _, item := range b.LineItems {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}

// SplitFor returns the split logic for the given item.
func (b Bill) SplitFor(itemID string) (SplitLogic, bool) {
	for _, s := range b.SplitLogic {
		if s.ItemID == itemID {
			return s, true
		}
	}
	return SplitLogic{}, false
}

// Charge returns the additional charge with the given id.
func (b Bill) Charge(id string) (AdditionalCharge, bool) {
	for _, c := range b.AdditionalCharges {
		if c.ID == id {
			return c, true
		}
	}
	return AdditionalCharge{}, false
}

// IDs returns every participant, line item and charge id in use.
func (b Bill) IDs() map[string]bool {
	ids := make(map[string]bool, len(b.Participants)+len(b.LineItems)+len(b.AdditionalCharges))
	for _, p := range b.Participants {
		ids[p.ID] = true
	}
	for _, item := range b.LineItems {
		ids[item.ID] = true
	}
	for _, c := range b.AdditionalCharges {
		ids[c.ID] = true
	}
	return ids
}
