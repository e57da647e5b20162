package calculator

import (
	"math"
	"testing"

	"github.com/mmynk/fairshare/internal/models"
)

const tolerance = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func scenarioBill() models.Bill {
	return models.Bill{
		Meta: models.Meta{Currency: "USD"},
		Participants: []models.Participant{
			{ID: "p1", Name: "Alex"},
			{ID: "p2", Name: "Sam"},
			{ID: "p3", Name: "Jordan"},
		},
		LineItems: []models.LineItem{
			{ID: "i1", Description: "Shared Appetizer Platter", Quantity: 1, UnitPrice: 18, TotalPrice: 18},
			{ID: "i2", Description: "Alex's Burger", Quantity: 1, UnitPrice: 16.5, TotalPrice: 16.5},
			{ID: "i3", Description: "Pitcher of Beer", Quantity: 1, UnitPrice: 24, TotalPrice: 24},
		},
		SplitLogic: []models.SplitLogic{
			{ItemID: "i1", Method: models.MethodEqual, Allocations: []models.SplitAllocation{
				{ParticipantID: "p1", Weight: 1}, {ParticipantID: "p2", Weight: 1}, {ParticipantID: "p3", Weight: 1},
			}},
			{ItemID: "i2", Method: models.MethodExplicit, Allocations: []models.SplitAllocation{
				{ParticipantID: "p1", Weight: 1},
			}},
			{ItemID: "i3", Method: models.MethodRatio, Allocations: []models.SplitAllocation{
				{ParticipantID: "p2", Weight: 2}, {ParticipantID: "p3", Weight: 1},
			}},
		},
		AdditionalCharges: []models.AdditionalCharge{
			{ID: "tax", Label: "Tax", Source: models.SourceReceipt, Type: models.ChargeFixed, Value: 5.85},
			{ID: "tip", Label: "Tip", Source: models.SourceUserPrompt, Type: models.ChargePercentage, Value: 20},
		},
	}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		bill         models.Bill
		validateFunc func(t *testing.T, totals Totals)
	}{
		{
			name: "dinner scenario with tax and tip",
			bill: scenarioBill(),
			validateFunc: func(t *testing.T, totals Totals) {
				// Subtotal = 18 + 16.50 + 24 = 58.50, tip = 20% = 11.70, tax = 5.85
				if !approx(totals.Subtotal, 58.5) {
					t.Errorf("Subtotal = %v, want 58.5", totals.Subtotal)
				}
				if !approx(totals.ChargeTotals["tip"], 11.7) {
					t.Errorf("Tip = %v, want 11.7", totals.ChargeTotals["tip"])
				}
				if !approx(totals.ChargeTotals["tax"], 5.85) {
					t.Errorf("Tax = %v, want 5.85", totals.ChargeTotals["tax"])
				}
				if !approx(totals.GrandTotal, 76.05) {
					t.Errorf("GrandTotal = %v, want 76.05", totals.GrandTotal)
				}

				// Alex: 6 + 16.50, Sam: 6 + 16, Jordan: 6 + 8
				wantBase := map[string]float64{"p1": 22.5, "p2": 22, "p3": 14}
				for id, want := range wantBase {
					got := totals.ByParticipant[id].BaseAmount
					if !approx(got, want) {
						t.Errorf("%s base = %v, want %v", id, got, want)
					}
					wantTotal := want + 17.55*(want/58.5)
					if !approx(totals.ByParticipant[id].Total, wantTotal) {
						t.Errorf("%s total = %v, want %v", id, totals.ByParticipant[id].Total, wantTotal)
					}
				}

				alex := totals.ByParticipant["p1"]
				if math.Abs(alex.Total-29.25) > 0.005 {
					t.Errorf("Alex total = %v, want ~29.25", alex.Total)
				}
				if len(alex.Items) != 2 {
					t.Errorf("Alex has %d items, want 2", len(alex.Items))
				}

				if totals.Unassigned().Total != 0 {
					t.Errorf("Unassigned total = %v, want 0", totals.Unassigned().Total)
				}
				if len(totals.Visible()) != 3 {
					t.Errorf("Visible() returned %d participants, want 3", len(totals.Visible()))
				}
			},
		},
		{
			name: "item without split logic goes to unassigned",
			bill: models.Bill{
				Participants: []models.Participant{{ID: "a", Name: "Alice"}},
				LineItems: []models.LineItem{
					{ID: "x", Description: "Mystery", Quantity: 1, TotalPrice: 12},
					{ID: "y", Description: "Empty split", Quantity: 1, TotalPrice: 3},
				},
				SplitLogic: []models.SplitLogic{{ItemID: "y", Method: models.MethodRatio}},
			},
			validateFunc: func(t *testing.T, totals Totals) {
				un := totals.Unassigned()
				if !approx(un.BaseAmount, 15) {
					t.Errorf("Unassigned base = %v, want 15", un.BaseAmount)
				}
				for _, item := range un.Items {
					if item.Share != 1 {
						t.Errorf("Unassigned share for %s = %v, want 1", item.ItemID, item.Share)
					}
				}
				if totals.ByParticipant["a"].BaseAmount != 0 {
					t.Errorf("Alice base = %v, want 0", totals.ByParticipant["a"].BaseAmount)
				}
				if got := len(totals.Visible()); got != 2 {
					t.Errorf("Visible() returned %d participants, want 2", got)
				}
			},
		},
		{
			name: "zero subtotal yields zero charge shares",
			bill: models.Bill{
				Participants: []models.Participant{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}},
				LineItems:    []models.LineItem{{ID: "x", Description: "Free water", Quantity: 1}},
				SplitLogic: []models.SplitLogic{{ItemID: "x", Method: models.MethodEqual, Allocations: []models.SplitAllocation{
					{ParticipantID: "a", Weight: 1}, {ParticipantID: "b", Weight: 1},
				}}},
				AdditionalCharges: []models.AdditionalCharge{
					{ID: "fee", Label: "Fee", Type: models.ChargeFixed, Value: 4},
				},
			},
			validateFunc: func(t *testing.T, totals Totals) {
				if totals.GrandTotal != 4 {
					t.Errorf("GrandTotal = %v, want 4", totals.GrandTotal)
				}
				for _, pt := range totals.Participants() {
					if math.IsNaN(pt.Total) || math.IsInf(pt.Total, 0) {
						t.Fatalf("%s total is not finite: %v", pt.ID, pt.Total)
					}
					if pt.ChargeShares["fee"] != 0 {
						t.Errorf("%s fee share = %v, want 0", pt.ID, pt.ChargeShares["fee"])
					}
				}
			},
		},
		{
			name: "no items",
			bill: models.Bill{
				Participants: []models.Participant{{ID: "a", Name: "Alice"}},
				AdditionalCharges: []models.AdditionalCharge{
					{ID: "tip", Label: "Tip", Type: models.ChargePercentage, Value: 18},
				},
			},
			validateFunc: func(t *testing.T, totals Totals) {
				if totals.Subtotal != 0 || totals.GrandTotal != 0 {
					t.Errorf("Subtotal = %v, GrandTotal = %v, want 0, 0", totals.Subtotal, totals.GrandTotal)
				}
				if len(totals.Order) != 2 || totals.Order[1] != models.UnassignedID {
					t.Errorf("Order = %v, want [a unassigned]", totals.Order)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, ComputeTotals(tt.bill))
		})
	}
}

func TestComputeTotals_WeightNormalization(t *testing.T) {
	weights := [][]float64{
		{1},
		{1, 1, 1},
		{2, 1},
		{0.25, 0.5, 3.75},
		{7, 11, 13, 17},
	}

	for _, ws := range weights {
		bill := models.Bill{
			LineItems: []models.LineItem{{ID: "x", Description: "Shared", Quantity: 1, TotalPrice: 47.31}},
		}
		logic := models.SplitLogic{ItemID: "x", Method: models.MethodRatio}
		for i, w := range ws {
			id := string(rune('a' + i))
			bill.Participants = append(bill.Participants, models.Participant{ID: id, Name: id})
			logic.Allocations = append(logic.Allocations, models.SplitAllocation{ParticipantID: id, Weight: w})
		}
		bill.SplitLogic = []models.SplitLogic{logic}

		totals := ComputeTotals(bill)

		var shareSum, baseSum float64
		for _, pt := range totals.Participants() {
			for _, item := range pt.Items {
				shareSum += item.Share
			}
			baseSum += pt.BaseAmount
		}
		if !approx(shareSum, 1) {
			t.Errorf("weights %v: share sum = %v, want 1", ws, shareSum)
		}
		if !approx(baseSum, 47.31) {
			t.Errorf("weights %v: base sum = %v, want 47.31", ws, baseSum)
		}
	}
}

func TestComputeTotals_Conservation(t *testing.T) {
	bill := scenarioBill()
	// Leave one item unassigned and add a percentage service fee.
	bill.LineItems = append(bill.LineItems, models.LineItem{ID: "i4", Description: "Dessert", Quantity: 2, UnitPrice: 4.75, TotalPrice: 9.5})
	bill.AdditionalCharges = append(bill.AdditionalCharges, models.AdditionalCharge{
		ID: "svc", Label: "Service", Type: models.ChargePercentage, Value: 3.5,
	})

	totals := ComputeTotals(bill)

	var baseSum, totalSum float64
	for _, pt := range totals.Participants() {
		baseSum += pt.BaseAmount
		totalSum += pt.Total
	}
	if !approx(baseSum, totals.Subtotal) {
		t.Errorf("sum of base amounts = %v, want subtotal %v", baseSum, totals.Subtotal)
	}
	if !approx(totalSum, totals.GrandTotal) {
		t.Errorf("sum of totals = %v, want grand total %v", totalSum, totals.GrandTotal)
	}
}

func TestComputeTotals_ChargeProportionality(t *testing.T) {
	bill := scenarioBill()

	bill.AdditionalCharges = []models.AdditionalCharge{{ID: "v", Label: "Fixed", Type: models.ChargeFixed, Value: 9}}
	totals := ComputeTotals(bill)
	for _, pt := range totals.Participants() {
		want := 9 * (pt.BaseAmount / totals.Subtotal)
		if !approx(pt.ChargeShares["v"], want) {
			t.Errorf("%s fixed share = %v, want %v", pt.ID, pt.ChargeShares["v"], want)
		}
	}

	bill.AdditionalCharges = []models.AdditionalCharge{{ID: "p", Label: "Pct", Type: models.ChargePercentage, Value: 15}}
	totals = ComputeTotals(bill)
	if !approx(totals.ChargeTotals["p"], totals.Subtotal*0.15) {
		t.Errorf("percentage amount = %v, want %v", totals.ChargeTotals["p"], totals.Subtotal*0.15)
	}
	for _, pt := range totals.Participants() {
		want := totals.ChargeTotals["p"] * (pt.BaseAmount / totals.Subtotal)
		if !approx(pt.ChargeShares["p"], want) {
			t.Errorf("%s percentage share = %v, want %v", pt.ID, pt.ChargeShares["p"], want)
		}
	}
}

func TestComputeTotals_DoesNotMutateBill(t *testing.T) {
	bill := scenarioBill()
	before := bill.Clone()

	ComputeTotals(bill)
	ComputeTotals(bill)

	if len(bill.SplitLogic[0].Allocations) != len(before.SplitLogic[0].Allocations) ||
		bill.LineItems[0].TotalPrice != before.LineItems[0].TotalPrice {
		t.Error("ComputeTotals modified its input")
	}
}
