// Package moneyfmt renders monetary amounts as French-locale strings.
package moneyfmt

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.French)

// Euros formats an amount with French digit grouping, two decimals, and a
// trailing euro sign, e.g. 38194.35 -> "38 194,35 €" (non-breaking group
// separators).
func Euros(d decimal.Decimal) string {
	f, _ := d.Float64()
	return printer.Sprintf("%v €", number.Decimal(f, number.Scale(2)))
}

// Amount formats a bare amount with French digit grouping and two decimals,
// without a currency sign.
func Amount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return printer.Sprintf("%v", number.Decimal(f, number.Scale(2)))
}
