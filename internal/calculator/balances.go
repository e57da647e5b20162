package calculator

import (
	"sort"
)

// settleTolerance hides floating point noise below half a cent.
const settleTolerance = 0.005

// Balance is one participant's position after the bill is paid.
type Balance struct {
	ParticipantID string
	Name          string
	Paid          float64 // Amount this person put toward the bill
	Owed          float64 // This person's Total
	Net           float64 // Positive = is owed money, negative = owes money
}

// Transfer is a payment from one participant to another.
type Transfer struct {
	From   string
	To     string
	Amount float64
}

// Settle works out who pays whom, given how much each participant actually
// paid at the table. payments is keyed by participant ID; unknown IDs and the
// unassigned bucket are ignored.
//
// Algorithm:
//   - net = paid - owed for every participant
//   - Debtors (net < 0) and creditors (net > 0) are sorted by size, largest
//     first, ties in bill order
//   - Greedy matching: the largest debtor pays the largest creditor the
//     smaller of the two amounts, until one side runs out
func Settle(totals Totals, payments map[string]float64) ([]Balance, []Transfer) {
	balances := make([]Balance, 0, len(totals.Order))
	for _, pt := range totals.Participants() {
		if pt.IsUnassigned() {
			continue
		}
		paid := payments[pt.ID]
		balances = append(balances, Balance{
			ParticipantID: pt.ID,
			Name:          pt.Name,
			Paid:          paid,
			Owed:          pt.Total,
			Net:           paid - pt.Total,
		})
	}

	// Create lists of creditors (owed money) and debtors (owe money)
	var debtors, creditors []int
	for i, b := range balances {
		if b.Net < -settleTolerance {
			debtors = append(debtors, i)
		} else if b.Net > settleTolerance {
			creditors = append(creditors, i)
		}
	}
	sort.SliceStable(debtors, func(a, b int) bool { return balances[debtors[a]].Net < balances[debtors[b]].Net })
	sort.SliceStable(creditors, func(a, b int) bool { return balances[creditors[a]].Net > balances[creditors[b]].Net })

	remainingDebt := make(map[int]float64, len(debtors))
	for _, i := range debtors {
		remainingDebt[i] = -balances[i].Net // Make positive
	}
	remainingCredit := make(map[int]float64, len(creditors))
	for _, i := range creditors {
		remainingCredit[i] = balances[i].Net
	}

	// Greedy algorithm: match largest debts with largest credits
	var transfers []Transfer
	d, c := 0, 0
	for d < len(debtors) && c < len(creditors) {
		debtor, creditor := debtors[d], creditors[c]

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := min(remainingDebt[debtor], remainingCredit[creditor])
		if amount > settleTolerance {
			transfers = append(transfers, Transfer{
				From:   balances[debtor].ParticipantID,
				To:     balances[creditor].ParticipantID,
				Amount: amount,
			})
		}

		remainingDebt[debtor] -= amount
		remainingCredit[creditor] -= amount

		// Move to next debtor/creditor if fully settled
		if remainingDebt[debtor] <= settleTolerance {
			d++
		}
		if remainingCredit[creditor] <= settleTolerance {
			c++
		}
	}

	return balances, transfers
}

// PaidBy records that one participant paid the whole bill.
func PaidBy(totals Totals, participantID string) map[string]float64 {
	return map[string]float64{participantID: totals.GrandTotal}
}
