package settlement

import (
	"fmt"
	"strings"

	"github.com/mmynk/fairshare/internal/calculator"
	"github.com/mmynk/fairshare/internal/models"
)

// ChargeLine is one additional charge, either bill-wide or one person's share.
type ChargeLine struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// ItemLine is one item a person pays for.
type ItemLine struct {
	Description string  `json:"description"`
	Share       float64 `json:"share"`
	Amount      float64 `json:"amount"`
}

// PersonLine is what one participant owes.
type PersonLine struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Total       float64      `json:"total"`
	Base        float64      `json:"base"`
	Charges     []ChargeLine `json:"charges"`
	Items       []ItemLine   `json:"items"`
	PaymentLink string       `json:"payment_link,omitempty"`
	Unassigned  bool         `json:"unassigned,omitempty"`
}

// Report is a display-ready breakdown of a bill.
type Report struct {
	Currency     string       `json:"currency"`
	People       []PersonLine `json:"people"`
	Subtotal     float64      `json:"subtotal"`
	Charges      []ChargeLine `json:"charges"`
	TotalCharges float64      `json:"total_charges"`
	GrandTotal   float64      `json:"grand_total"`
}

// Summary builds a report from a bill and its computed totals. The unassigned
// bucket is listed only when it owes something, and never gets a payment link.
func Summary(b models.Bill, totals calculator.Totals) Report {
	r := Report{
		Currency:     b.Meta.Currency,
		Subtotal:     totals.Subtotal,
		TotalCharges: totals.TotalCharges,
		GrandTotal:   totals.GrandTotal,
		Charges:      make([]ChargeLine, 0, len(b.AdditionalCharges)),
	}
	for _, c := range b.AdditionalCharges {
		r.Charges = append(r.Charges, ChargeLine{ID: c.ID, Label: c.Label, Amount: totals.ChargeTotals[c.ID]})
	}

	for _, pt := range totals.Visible() {
		person := PersonLine{
			ID:         pt.ID,
			Name:       pt.Name,
			Total:      pt.Total,
			Base:       pt.BaseAmount,
			Charges:    make([]ChargeLine, 0, len(b.AdditionalCharges)),
			Items:      make([]ItemLine, 0, len(pt.Items)),
			Unassigned: pt.IsUnassigned(),
		}
		for _, c := range b.AdditionalCharges {
			person.Charges = append(person.Charges, ChargeLine{ID: c.ID, Label: c.Label, Amount: pt.ChargeShares[c.ID]})
		}
		for _, item := range pt.Items {
			person.Items = append(person.Items, ItemLine{
				Description: item.Description,
				Share:       item.Share,
				Amount:      item.Amount(),
			})
		}
		if !person.Unassigned {
			person.PaymentLink = BuildPaymentRequestLink(pt)
		}
		r.People = append(r.People, person)
	}

	return r
}

// Text renders the report as plain text in en-US.
func (r Report) Text() string {
	return DefaultFormatter.Text(r)
}

// Text renders the report as plain text, suitable for pasting into a chat.
func (f Formatter) Text(r Report) string {
	m := func(v float64) string { return f.Money(v, r.Currency) }

	var b strings.Builder
	for _, p := range r.People {
		fmt.Fprintf(&b, "%s: %s\n", p.Name, m(p.Total))

		parts := []string{"Base " + m(p.Base)}
		for _, c := range p.Charges {
			parts = append(parts, c.Label+" "+m(c.Amount))
		}
		fmt.Fprintf(&b, "  %s\n", strings.Join(parts, ", "))

		for _, item := range p.Items {
			fmt.Fprintf(&b, "  - %s (%s) %s\n", item.Description, percent(item.Share), m(item.Amount))
		}
		if p.PaymentLink != "" {
			fmt.Fprintf(&b, "  Request: %s\n", p.PaymentLink)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Subtotal: %s\n", m(r.Subtotal))
	for _, c := range r.Charges {
		fmt.Fprintf(&b, "%s: %s\n", c.Label, m(c.Amount))
	}
	fmt.Fprintf(&b, "Total: %s\n", m(r.GrandTotal))
	return b.String()
}

func percent(share float64) string {
	return fmt.Sprintf("%.0f%%", share*100)
}

// TransferLine is one payment needed to settle up after the bill is paid.
type TransferLine struct {
	From     string  `json:"from"`
	FromName string  `json:"from_name"`
	To       string  `json:"to"`
	ToName   string  `json:"to_name"`
	Amount   float64 `json:"amount"`
}

// Transfers attaches participant names to transfers.
func Transfers(b models.Bill, transfers []calculator.Transfer) []TransferLine {
	name := func(id string) string {
		if p, ok := b.Participant(id); ok {
			return p.Name
		}
		return id
	}

	lines := make([]TransferLine, 0, len(transfers))
	for _, t := range transfers {
		lines = append(lines, TransferLine{
			From:     t.From,
			FromName: name(t.From),
			To:       t.To,
			ToName:   name(t.To),
			Amount:   t.Amount,
		})
	}
	return lines
}

// TransfersText renders one "X pays Y $n" line per transfer.
func (f Formatter) TransfersText(lines []TransferLine, currency string) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s pays %s %s\n", l.FromName, l.ToName, f.Money(l.Amount, currency))
	}
	return b.String()
}
