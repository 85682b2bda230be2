// Package stats computes aggregate statistics over an item collection.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/valuation"
)

// Summary holds the aggregate figures for a collection (or a filtered subset).
type Summary struct {
	Count          int         `json:"count"`
	SoldCount      int         `json:"soldCount"`
	UnsoldCount    int         `json:"unsoldCount"`
	TotalSpent     float64     `json:"totalSpent"`
	TotalValue     float64     `json:"totalValue"`
	TotalProfit    float64     `json:"totalProfit"`
	AverageProfit  float64     `json:"averageProfit"`
	MostProfitable *model.Item `json:"mostProfitable,omitempty"`
}

// Compute summarizes items. An empty collection yields zero totals and no
// most-profitable item. Ties for most profitable go to the first item encountered.
func Compute(items []model.Item) Summary {
	s := Summary{Count: len(items)}

	spent := decimal.Zero
	value := decimal.Zero
	var best *model.Item
	var bestProfit float64

	for _, item := range items {
		if item.Sold() {
			s.SoldCount++
		}
		spent = spent.Add(decimal.NewFromFloat(item.PurchasePrice))
		value = value.Add(decimal.NewFromFloat(item.RealizedValue()))

		p := valuation.Profit(item)
		if best == nil || p > bestProfit {
			c := item.Clone()
			best = &c
			bestProfit = p
		}
	}

	s.UnsoldCount = s.Count - s.SoldCount
	profit := value.Sub(spent)
	s.TotalSpent = spent.InexactFloat64()
	s.TotalValue = value.InexactFloat64()
	s.TotalProfit = profit.InexactFloat64()
	if s.Count > 0 {
		s.AverageProfit = profit.Div(decimal.NewFromInt(int64(s.Count))).InexactFloat64()
	}
	s.MostProfitable = best
	return s
}
