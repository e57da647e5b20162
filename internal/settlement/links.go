package settlement

import (
	"strings"
	"unicode/utf8"

	"github.com/mmynk/fairshare/internal/calculator"
	"github.com/mmynk/fairshare/internal/money"
)

const (
	paymentRequestBase = "venmo://paycharge?txn=charge"

	// maxNoteLength is the longest note sent with a payment request, in runes.
	maxNoteLength = 150
)

// BuildPaymentRequestLink returns a Venmo charge link for the participant's
// total. The note lists the participant's items.
func BuildPaymentRequestLink(pt *calculator.ParticipantTotal) string {
	descriptions := make([]string, len(pt.Items))
	for i, item := range pt.Items {
		descriptions[i] = item.Description
	}

	return paymentRequestBase +
		"&amount=" + money.Fixed2(pt.Total) +
		"&note=" + escapeComponent(truncateNote(strings.Join(descriptions, ", ")))
}

func truncateNote(note string) string {
	if utf8.RuneCountInString(note) <= maxNoteLength {
		return note
	}
	return string([]rune(note)[:maxNoteLength-3]) + "..."
}

// escapeComponent percent-encodes every byte outside the URI component
// unreserved set A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
