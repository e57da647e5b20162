package calculator

import (
	"testing"
)

func TestSettle(t *testing.T) {
	totals := ComputeTotals(scenarioBill())

	tests := []struct {
		name     string
		payments map[string]float64
		want     []Transfer
	}{
		{
			name:     "one payer",
			payments: PaidBy(totals, "p1"),
			want: []Transfer{
				{From: "p2", To: "p1", Amount: 28.60},
				{From: "p3", To: "p1", Amount: 18.20},
			},
		},
		{
			name:     "two payers, largest debt first",
			payments: map[string]float64{"p1": 50, "p2": 26.05},
			want: []Transfer{
				{From: "p3", To: "p1", Amount: 18.20},
				{From: "p2", To: "p1", Amount: 2.55},
			},
		},
		{
			name:     "exact shares need no transfers",
			payments: map[string]float64{"p1": 29.25, "p2": 28.60, "p3": 18.20},
			want:     nil,
		},
		{
			name:     "nobody paid",
			payments: nil,
			want:     nil,
		},
		{
			name:     "unknown payer is ignored",
			payments: map[string]float64{"ghost": 76.05},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, transfers := Settle(totals, tt.payments)

			if len(balances) != 3 {
				t.Fatalf("Expected 3 balances, got %d", len(balances))
			}
			if len(transfers) != len(tt.want) {
				t.Fatalf("Expected %d transfers, got %d: %+v", len(tt.want), len(transfers), transfers)
			}
			for i, want := range tt.want {
				got := transfers[i]
				if got.From != want.From || got.To != want.To || !approxCents(got.Amount, want.Amount) {
					t.Errorf("Transfer %d = %+v, want %+v", i, got, want)
				}
			}
		})
	}
}

func TestSettle_IgnoresUnassigned(t *testing.T) {
	bill := scenarioBill()
	bill.SplitLogic = bill.SplitLogic[:2] // beer is unassigned
	totals := ComputeTotals(bill)

	balances, transfers := Settle(totals, PaidBy(totals, "p2"))

	for _, b := range balances {
		if b.ParticipantID == "unassigned" {
			t.Fatal("Unassigned bucket must not get a balance")
		}
	}

	// Sam is owed what Alex and Jordan owe; the beer stays with Sam.
	var received float64
	for _, tr := range transfers {
		if tr.To != "p2" {
			t.Errorf("Unexpected transfer %+v", tr)
		}
		received += tr.Amount
	}
	alex := totals.ByParticipant["p1"].Total
	jordan := totals.ByParticipant["p3"].Total
	if !approxCents(received, alex+jordan) {
		t.Errorf("Sam receives %.2f, want %.2f", received, alex+jordan)
	}
}

func approxCents(a, b float64) bool {
	d := a - b
	return d < 0.005 && d > -0.005
}
