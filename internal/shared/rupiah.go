package shared

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount for user-facing messages, e.g. "Rp 1.234.567".
func Rupiah(amount float64) string {
	return rupiahPrinter.Sprintf("Rp %v", number.Decimal(amount, number.MaxFractionDigits(2)))
}
