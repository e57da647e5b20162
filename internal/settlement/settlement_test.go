package settlement

import (
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/mmynk/fairshare/internal/billstore"
	"github.com/mmynk/fairshare/internal/calculator"
	"github.com/mmynk/fairshare/internal/models"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		currency   string
		wantSuffix string
	}{
		{name: "cents", amount: 29.25, currency: "USD", wantSuffix: "29.25"},
		{name: "grouping", amount: 1234.5, currency: "USD", wantSuffix: "1,234.50"},
		{name: "half away from zero", amount: 2.005, currency: "USD", wantSuffix: "2.01"},
		{name: "zero", amount: 0, currency: "usd", wantSuffix: "0.00"},
		{name: "no minor units", amount: 1234.5, currency: "JPY", wantSuffix: "1,235"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMoney(tt.amount, tt.currency)
			assert.True(t, strings.HasSuffix(got, tt.wantSuffix), "FormatMoney(%v, %q) = %q", tt.amount, tt.currency, got)
		})
	}

	assert.Contains(t, FormatMoney(1, "USD"), "$")
	assert.Equal(t, FormatMoney(12.3, "USD"), FormatMoney(12.3, "not-a-code"))
	assert.Equal(t, FormatMoney(12.3, "USD"), FormatMoney(12.3, ""))
	assert.Equal(t, FormatMoney(4, "USD"), Formatter{}.Money(4, "USD"))
}

func TestFormatter_Language(t *testing.T) {
	f := Formatter{Language: language.German}
	got := f.Money(1234.5, "EUR")
	assert.Equal(t, "€1.234,50", got, "locale separators with the symbol as a prefix")
	assert.Equal(t, "-€3,00", f.Money(-3, "EUR"))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, -1.01, Round2(-1.005))
	assert.Equal(t, 29.25, Round2(29.249999999999996))
}

func TestBuildPaymentRequestLink(t *testing.T) {
	totals := calculator.ComputeTotals(billstore.ExampleBill())

	got := BuildPaymentRequestLink(totals.ByParticipant["p1"])
	assert.Equal(t,
		"venmo://paycharge?txn=charge&amount=29.25&note=Shared%20Appetizer%20Platter%2C%20Alex's%20Burger",
		got)

	pt := &calculator.ParticipantTotal{
		Total: 3.5,
		Items: []calculator.ItemShare{{Description: "Café crème"}, {Description: "Pain & beurre"}},
	}
	assert.Equal(t,
		"venmo://paycharge?txn=charge&amount=3.50&note=Caf%C3%A9%20cr%C3%A8me%2C%20Pain%20%26%20beurre",
		BuildPaymentRequestLink(pt))
}

func TestBuildPaymentRequestLink_TruncatesNote(t *testing.T) {
	pt := &calculator.ParticipantTotal{
		Total: 10,
		Items: []calculator.ItemShare{
			{Description: strings.Repeat("a", 100)},
			{Description: strings.Repeat("é", 100)},
		},
	}

	link := BuildPaymentRequestLink(pt)
	_, encoded, ok := strings.Cut(link, "&note=")
	require.True(t, ok)
	note, err := url.PathUnescape(encoded)
	require.NoError(t, err)

	assert.Equal(t, 150, utf8.RuneCountInString(note))
	assert.True(t, strings.HasSuffix(note, "..."))
	assert.True(t, strings.HasPrefix(note, strings.Repeat("a", 100)+", "))

	// Notes at the limit are kept whole.
	pt.Items = []calculator.ItemShare{{Description: strings.Repeat("b", 150)}}
	assert.True(t, strings.HasSuffix(BuildPaymentRequestLink(pt), strings.Repeat("b", 150)))
}

func TestSummary(t *testing.T) {
	bill := billstore.ExampleBill()
	report := Summary(bill, calculator.ComputeTotals(bill))

	require.Len(t, report.People, 3)
	assert.Equal(t, "Alex", report.People[0].Name)
	assert.InDelta(t, 22.5, report.People[0].Base, 1e-9)
	assert.Len(t, report.People[0].Items, 2)
	require.Len(t, report.Charges, 2)
	assert.InDelta(t, 11.7, report.Charges[1].Amount, 1e-9)
	assert.InDelta(t, 76.05, report.GrandTotal, 1e-9)
	for _, p := range report.People {
		assert.NotEmpty(t, p.PaymentLink)
		assert.False(t, p.Unassigned)
	}

	text := report.Text()
	assert.Contains(t, text, "Alex: ")
	assert.Contains(t, text, "29.25")
	assert.Contains(t, text, "  - Pitcher of Beer (67%) ")
	assert.Contains(t, text, "Request: venmo://paycharge")
	assert.Contains(t, text, "Total: ")
	assert.NotContains(t, text, calculator.UnassignedName)
}

func TestSummary_Unassigned(t *testing.T) {
	bill := billstore.ExampleBill()
	bill.LineItems = append(bill.LineItems, models.LineItem{ID: "i4", Description: "Dessert", Quantity: 1, TotalPrice: 9})
	report := Summary(bill, calculator.ComputeTotals(bill))

	require.Len(t, report.People, 4)
	last := report.People[3]
	assert.True(t, last.Unassigned)
	assert.Equal(t, calculator.UnassignedName, last.Name)
	assert.Empty(t, last.PaymentLink)
	assert.Contains(t, report.Text(), calculator.UnassignedName+": ")
}

func TestTransfers(t *testing.T) {
	b := billstore.ExampleBill()
	totals := calculator.ComputeTotals(b)
	_, transfers := calculator.Settle(totals, calculator.PaidBy(totals, "p1"))

	lines := Transfers(b, transfers)
	require.Len(t, lines, 2)
	assert.Equal(t, "Sam", lines[0].FromName)
	assert.Equal(t, "Alex", lines[0].ToName)

	text := DefaultFormatter.TransfersText(lines, b.Meta.Currency)
	assert.Equal(t, "Sam pays Alex $28.60\nJordan pays Alex $18.20\n", text)
}
