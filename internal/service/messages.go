package service

import (
	"encoding/json"
	"time"

	"github.com/mmynk/fairshare/internal/billstore"
	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/settlement"
)

// BillResponse is returned by every RPC that reads or edits the bill.
type BillResponse struct {
	Bill   models.Bill       `json:"bill"`
	Totals settlement.Report `json:"totals"`

	// Unassigned is true when some item has no allocation.
	Unassigned bool `json:"unassigned"`
}

// StartSessionRequest chooses the initial bill. Bill, when present, is
// normalized; otherwise Example selects the demo dinner; otherwise the bill
// starts empty.
type StartSessionRequest struct {
	Example bool            `json:"example,omitempty"`
	Bill    json.RawMessage `json:"bill,omitempty"`
}

type StartSessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	BillResponse
}

// ProcessReceiptRequest carries a receipt image (base64 in JSON) and free-form
// instructions. Either may be empty, not both.
type ProcessReceiptRequest struct {
	Image        []byte `json:"image,omitempty"`
	MediaType    string `json:"media_type,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type GetBillRequest struct{}

type AddParticipantRequest struct {
	Name string `json:"name"`
}

type RenameParticipantRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DeleteParticipantRequest struct {
	ID string `json:"id"`
}

type AddLineItemRequest struct {
	billstore.LineItemInput
}

type EditLineItemRequest struct {
	ID string `json:"id"`
	billstore.LineItemInput
}

type DeleteLineItemRequest struct {
	ID string `json:"id"`
}

type SetAllocationWeightRequest struct {
	ItemID        string  `json:"item_id"`
	ParticipantID string  `json:"participant_id"`
	Weight        float64 `json:"weight"`
}

// SplitItemEquallyRequest gives every listed participant weight 1 on the item.
type SplitItemEquallyRequest struct {
	ItemID         string   `json:"item_id"`
	ParticipantIDs []string `json:"participant_ids"`
}

type AddChargeRequest struct {
	billstore.ChargeInput
}

// EditChargeRequest sets one field of a charge. Value is a JSON string for
// label, type and source, and a number or numeric string for value.
type EditChargeRequest struct {
	ID    string          `json:"id"`
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type DeleteChargeRequest struct {
	ID string `json:"id"`
}

// GetSettlementRequest selects the display language, e.g. "de-DE" (empty
// means American English), and optionally who paid at the table: PaidBy names
// a single payer of the whole bill, Payments lists amounts per participant.
type GetSettlementRequest struct {
	Language string             `json:"language,omitempty"`
	PaidBy   string             `json:"paid_by,omitempty"`
	Payments map[string]float64 `json:"payments,omitempty"`
}

type GetSettlementResponse struct {
	Report settlement.Report `json:"report"`

	// Amounts maps participant id to the formatted amount owed.
	Amounts map[string]string `json:"amounts"`

	// Transfers settle up the payments, when any were given.
	Transfers []settlement.TransferLine `json:"transfers,omitempty"`

	// Text is the shareable plain-text summary.
	Text string `json:"text"`
}

type EndSessionRequest struct{}

type EndSessionResponse struct{}
