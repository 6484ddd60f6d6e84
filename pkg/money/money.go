package money

import "github.com/shopspring/decimal"

// FormatEUR renders an amount the way the site does everywhere: euro sign,
// two decimals, no thousands separator.
func FormatEUR(amount decimal.Decimal) string {
	return "€" + amount.StringFixed(2)
}
