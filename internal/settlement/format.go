// Package settlement renders computed totals for people: formatted amounts,
// payment request links and a shareable text summary.
package settlement

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/mmynk/fairshare/internal/money"
)

// Formatter formats amounts for one locale.
type Formatter struct {
	Language language.Tag
}

// DefaultFormatter formats for en-US.
var DefaultFormatter = Formatter{Language: language.AmericanEnglish}

// FormatMoney formats amount in the given ISO 4217 currency for en-US,
// e.g. "$29.25". Unknown currency codes fall back to USD.
func FormatMoney(amount float64, code string) string {
	return DefaultFormatter.Money(amount, code)
}

// Round2 rounds to cents, half away from zero.
func Round2(v float64) float64 {
	return money.Round2(v)
}

// Money formats amount in the given currency. The amount is rounded half away
// from zero to the currency's standard precision. Digit grouping and the
// decimal separator follow the locale; the symbol is always a prefix, so de-DE
// renders "€1.234,50" rather than "1.234,50 €".
func (f Formatter) Money(amount float64, code string) string {
	unit := parseCurrency(code)
	scale, _ := currency.Standard.Rounding(unit)

	rounded := money.Round(amount, int32(scale))
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}

	p := message.NewPrinter(f.lang())
	return sign + p.Sprint(currency.Symbol(unit)) + p.Sprint(number.Decimal(rounded, number.Scale(scale)))
}

func (f Formatter) lang() language.Tag {
	if f.Language == language.Und {
		return language.AmericanEnglish
	}
	return f.Language
}

func parseCurrency(code string) currency.Unit {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return currency.USD
	}
	return unit
}
