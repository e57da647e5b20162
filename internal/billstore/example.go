package billstore

import "github.com/mmynk/fairshare/internal/models"

// ExampleBill returns a small dinner for three that exercises every split
// method and both charge types.
func ExampleBill() models.Bill {
	return models.Bill{
		Meta: models.Meta{Currency: "USD", Notes: "Example dinner"},
		Participants: []models.Participant{
			{ID: "p1", Name: "Alex"},
			{ID: "p2", Name: "Sam"},
			{ID: "p3", Name: "Jordan"},
		},
		LineItems: []models.LineItem{
			{ID: "i1", Description: "Shared Appetizer Platter", Quantity: 1, UnitPrice: 18, TotalPrice: 18, Category: "food"},
			{ID: "i2", Description: "Alex's Burger", Quantity: 1, UnitPrice: 16.5, TotalPrice: 16.5, Category: "food"},
			{ID: "i3", Description: "Pitcher of Beer", Quantity: 1, UnitPrice: 24, TotalPrice: 24, Category: "alcohol"},
		},
		SplitLogic: []models.SplitLogic{
			{ItemID: "i1", Method: models.MethodEqual, Allocations: []models.SplitAllocation{
				{ParticipantID: "p1", Weight: 1},
				{ParticipantID: "p2", Weight: 1},
				{ParticipantID: "p3", Weight: 1},
			}},
			{ItemID: "i2", Method: models.MethodExplicit, Allocations: []models.SplitAllocation{
				{ParticipantID: "p1", Weight: 1},
			}},
			{ItemID: "i3", Method: models.MethodRatio, Allocations: []models.SplitAllocation{
				{ParticipantID: "p2", Weight: 2},
				{ParticipantID: "p3", Weight: 1},
			}},
		},
		AdditionalCharges: []models.AdditionalCharge{
			{ID: "tax", Label: "Tax", Source: models.SourceReceipt, Type: models.ChargeFixed, Value: 5.85},
			{ID: "tip", Label: "Tip", Source: models.SourceUserPrompt, Type: models.ChargePercentage, Value: 20},
		},
	}
}
