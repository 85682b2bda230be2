// Package valuation derives per-item metrics: profit, profit percentage and
// how long an item has been (or was) held.
package valuation

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/datavault/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Profit is the signed difference between the realized value (sale price when
// sold, current valuation otherwise) and the purchase price.
func Profit(item model.Item) float64 {
	return profit(item).InexactFloat64()
}

func profit(item model.Item) decimal.Decimal {
	return decimal.NewFromFloat(item.RealizedValue()).Sub(decimal.NewFromFloat(item.PurchasePrice))
}

// ProfitPercentage returns profit relative to purchase price, formatted with
// one decimal place ("12.5"). Items with a zero purchase price report "0.0".
func ProfitPercentage(item model.Item) string {
	return profitPercentage(item).StringFixed(1)
}

// ProfitPercentageValue is ProfitPercentage as a number, rounded the same way.
func ProfitPercentageValue(item model.Item) float64 {
	return profitPercentage(item).Round(1).InexactFloat64()
}

func profitPercentage(item model.Item) decimal.Decimal {
	if item.PurchasePrice == 0 || math.IsNaN(item.PurchasePrice) || math.IsInf(item.PurchasePrice, 0) {
		return decimal.Zero
	}
	return profit(item).Div(decimal.NewFromFloat(item.PurchasePrice)).Mul(hundred)
}

// HoldingDays returns the whole number of days (rounded up, never negative)
// between the purchase date and the sale date, or now when saleDate is empty.
func HoldingDays(purchaseDate, saleDate string, now time.Time) (int, error) {
	start, err := model.ParseDate(purchaseDate, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("parsing purchase date: %w", err)
	}

	// Wall clock in UTC keeps DST shifts out of the day count.
	end := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
	if saleDate != "" {
		end, err = model.ParseDate(saleDate, time.UTC)
		if err != nil {
			return 0, fmt.Errorf("parsing sale date: %w", err)
		}
	}

	diff := end.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24)), nil
}

// HoldingDuration formats the holding period: days below a month, months
// (30 days) below a year, years (365 days) otherwise. Unparseable dates yield "-".
func HoldingDuration(purchaseDate, saleDate string, now time.Time) string {
	days, err := HoldingDays(purchaseDate, saleDate, now)
	if err != nil {
		return "-"
	}
	return FormatDays(days)
}

// FormatDays renders a day count the way HoldingDuration does.
func FormatDays(days int) string {
	switch {
	case days < 30:
		return fmt.Sprintf("%d giorni", days)
	case days < 365:
		return fmt.Sprintf("%d mesi", days/30)
	}
	years := days / 365
	if years == 1 {
		return "1 anno"
	}
	return fmt.Sprintf("%d anni", years)
}
