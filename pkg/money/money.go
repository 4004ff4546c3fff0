// Package money renders Kenyan shilling amounts for display.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const CurrencyKES = "KES"

var printer = message.NewPrinter(language.English)

// FormatKES renders a whole-shilling amount the way the storefront shows prices, e.g. "KSh 8,500".
func FormatKES(amount int64) string {
	return printer.Sprintf("KSh %d", amount)
}
