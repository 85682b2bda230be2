package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when none is configured.
const DefaultCurrency = money.EUR

// KnownCurrency reports whether code is an ISO 4217 code go-money knows.
func KnownCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// FormatMoney formats amount in the major unit of currency, e.g. "€1,250.00".
func FormatMoney(amount float64, currency string) string {
	// money.New never returns a nil currency, unlike GetCurrency.
	cur := *money.New(0, currency).Currency()
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
