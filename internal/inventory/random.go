package inventory

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/erazemk/datavault/internal/model"
)

// DemoCategories are the categories random demo items are drawn from.
var DemoCategories = []string{"Elettronica", "Mobili", "Arte", "Gioielli", "Libri"}

// RandomItem returns a plausible demo item: an origin year from 1900 up to last
// year, a purchase date between that year and now, a purchase price in
// [50, 1050) and a current value of one to three times the purchase price.
func RandomItem(r *rand.Rand, now time.Time) model.Item {
	year := 1900 + r.IntN(max(now.Year()-1900, 1))
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
	span := now.Sub(from)
	purchased := from
	if span > 0 {
		purchased = from.Add(time.Duration(r.Int64N(int64(span))))
	}

	price := float64(r.IntN(1000) + 50)
	value := float64(int(price * (1 + r.Float64()*2)))

	return model.Item{
		Name:          fmt.Sprintf("Articolo %d", r.IntN(1000)),
		Category:      DemoCategories[r.IntN(len(DemoCategories))],
		Year:          fmt.Sprint(year),
		PurchasePrice: price,
		PurchaseDate:  model.FormatDate(purchased),
		CurrentValue:  value,
		Image:         model.DefaultImage,
	}
}
