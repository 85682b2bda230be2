package model

// Item is a tracked collectible. An item is sold exactly when SalePrice is set.
type Item struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Year          string   `json:"year"`
	PurchasePrice float64  `json:"purchasePrice"`
	PurchaseDate  string   `json:"purchaseDate"`
	CurrentValue  float64  `json:"currentValue"`
	Image         string   `json:"image"`
	SalePrice     *float64 `json:"salePrice,omitempty"`
	SaleDate      string   `json:"saleDate,omitempty"`
	CreatedAt     int64    `json:"createdAt"`
}

// DefaultImage is used when an item is created without an image.
const DefaultImage = "https://picsum.photos/200"

// Sale statuses used by filters.
const (
	StatusAll    = "all"
	StatusSold   = "sold"
	StatusUnsold = "unsold"
)

// Sold reports whether a sale price has been recorded.
func (i Item) Sold() bool {
	return i.SalePrice != nil
}

// RealizedValue is the sale price for sold items and the current valuation otherwise.
func (i Item) RealizedValue() float64 {
	if i.SalePrice != nil {
		return *i.SalePrice
	}
	return i.CurrentValue
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	if i.SalePrice != nil {
		p := *i.SalePrice
		i.SalePrice = &p
	}
	return i
}

// Price returns a pointer to v, for building sold items.
func Price(v float64) *float64 {
	return &v
}
