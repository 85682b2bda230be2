package valuation

import (
	"testing"
	"time"

	"github.com/erazemk/datavault/internal/model"
)

func TestProfit(t *testing.T) {
	tests := []struct {
		name string
		item model.Item
		want float64
	}{
		{"break even", model.Item{PurchasePrice: 100, CurrentValue: 100}, 0},
		{"unrealized gain", model.Item{PurchasePrice: 100, CurrentValue: 180}, 80},
		{"unrealized loss", model.Item{PurchasePrice: 300, CurrentValue: 150}, -150},
		{"sale price wins", model.Item{PurchasePrice: 100, CurrentValue: 10, SalePrice: model.Price(150)}, 50},
		{"sold at loss", model.Item{PurchasePrice: 100, CurrentValue: 500, SalePrice: model.Price(40)}, -60},
		{"no float drift", model.Item{PurchasePrice: 0.1, CurrentValue: 0.3}, 0.2},
	}

	for _, tt := range tests {
		if got := Profit(tt.item); got != tt.want {
			t.Errorf("%s: Profit() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestProfitSignMatchesRealizedValue(t *testing.T) {
	values := []float64{0.01, 1, 99.99, 100, 100.01, 250, 1e6}
	for _, purchase := range values {
		for _, current := range values {
			item := model.Item{PurchasePrice: purchase, CurrentValue: current}
			if (Profit(item) >= 0) != (current >= purchase) {
				t.Errorf("sign mismatch for purchase=%v current=%v: profit=%v", purchase, current, Profit(item))
			}
		}
	}
}

func TestProfitPercentage(t *testing.T) {
	tests := []struct {
		item model.Item
		want string
		num  float64
	}{
		{model.Item{PurchasePrice: 100, CurrentValue: 100}, "0.0", 0},
		{model.Item{PurchasePrice: 100, CurrentValue: 150}, "50.0", 50},
		{model.Item{PurchasePrice: 300, CurrentValue: 150}, "-50.0", -50},
		{model.Item{PurchasePrice: 3, CurrentValue: 4}, "33.3", 33.3},
		{model.Item{PurchasePrice: 3, CurrentValue: 5}, "66.7", 66.7},
		{model.Item{PurchasePrice: 100, CurrentValue: 1, SalePrice: model.Price(125)}, "25.0", 25},
		{model.Item{PurchasePrice: 0, CurrentValue: 10}, "0.0", 0},
	}

	for _, tt := range tests {
		if got := ProfitPercentage(tt.item); got != tt.want {
			t.Errorf("ProfitPercentage(%+v) = %q, want %q", tt.item, got, tt.want)
		}
		if got := ProfitPercentageValue(tt.item); got != tt.num {
			t.Errorf("ProfitPercentageValue(%+v) = %v, want %v", tt.item, got, tt.num)
		}
	}
}

func TestHoldingDuration(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		purchase string
		sale     string
		want     string
	}{
		{"same day sale", "01/01/2020", "01/01/2020", "0 giorni"},
		{"days", "01/01/2020", "11/01/2020", "10 giorni"},
		{"29 days", "01/01/2020", "30/01/2020", "29 giorni"},
		{"one month", "01/01/2020", "31/01/2020", "1 mesi"},
		{"months", "01/01/2020", "01/07/2020", "6 mesi"},
		{"one year", "01/01/2020", "01/01/2021", "1 anno"},
		{"years", "01/01/2015", "01/01/2020", "5 anni"},
		{"misordered dates", "01/01/2021", "01/01/2020", "1 anno"},
		{"until now rounds up", "14/06/2024", "", "2 giorni"},
		{"unparseable", "ieri", "", "-"},
	}

	for _, tt := range tests {
		if got := HoldingDuration(tt.purchase, tt.sale, now); got != tt.want {
			t.Errorf("%s: HoldingDuration(%q, %q) = %q, want %q", tt.name, tt.purchase, tt.sale, got, tt.want)
		}
	}
}

func TestHoldingDaysNeverNegative(t *testing.T) {
	days, err := HoldingDays("01/01/2030", "", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("HoldingDays: %v", err)
	}
	if days <= 0 {
		t.Errorf("expected positive day count for future purchase date, got %d", days)
	}
}
