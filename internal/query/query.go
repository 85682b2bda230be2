// Package query produces filtered and sorted read-only views of an item collection.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/valuation"
)

// SortKey selects the ordering of a view.
type SortKey string

// Sort keys.
const (
	SortCreatedAt        SortKey = "createdAt"
	SortProfit           SortKey = "profit"
	SortPurchaseDate     SortKey = "purchaseDate"
	SortProfitPercentage SortKey = "profitPercentage"
)

// Direction is the sort direction. Every key sorts descending by default.
type Direction string

// Sort directions.
const (
	Desc Direction = "desc"
	Asc  Direction = "asc"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

// Spec describes a view over the collection. The zero value matches every item
// and sorts newest first.
type Spec struct {
	Search    string    `json:"search"`
	Status    string    `json:"status"`
	Category  string    `json:"category"`
	SortKey   SortKey   `json:"sort"`
	Direction Direction `json:"order"`
}

// ParseSortKey accepts the sort key names along with their short aliases.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "createdat", "created":
		return SortCreatedAt, nil
	case "profit":
		return SortProfit, nil
	case "purchasedate", "date":
		return SortPurchaseDate, nil
	case "profitpercentage", "percentage", "percent":
		return SortProfitPercentage, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// ParseDirection parses "asc" or "desc" (empty means desc).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return Desc, nil
	case "asc":
		return Asc, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

// ParseStatus validates a sale-status filter (empty means all).
func ParseStatus(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", model.StatusAll:
		return model.StatusAll, nil
	case model.StatusSold:
		return model.StatusSold, nil
	case model.StatusUnsold:
		return model.StatusUnsold, nil
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

// Apply returns a new slice holding the items that match spec, in spec order.
// The input slice is never modified.
func Apply(items []model.Item, spec Spec) []model.Item {
	search := strings.ToLower(spec.Search)

	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if !matchesSearch(item, search) || !matchesStatus(item, spec.Status) || !matchesCategory(item, spec.Category) {
			continue
		}
		out = append(out, item.Clone())
	}

	compare := comparator(spec.SortKey)
	sign := 1
	if spec.Direction == Asc {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b model.Item) int {
		return sign * compare(a, b)
	})
	return out
}

func matchesSearch(item model.Item, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), search) ||
		strings.Contains(strings.ToLower(item.Category), search)
}

func matchesStatus(item model.Item, status string) bool {
	switch status {
	case model.StatusSold:
		return item.Sold()
	case model.StatusUnsold:
		return !item.Sold()
	}
	return true
}

func matchesCategory(item model.Item, category string) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	return item.Category == category
}

// comparator returns a descending comparison for key: negative when a sorts before b.
func comparator(key SortKey) func(a, b model.Item) int {
	switch key {
	case SortProfit:
		return func(a, b model.Item) int {
			return cmp.Compare(valuation.Profit(b), valuation.Profit(a))
		}
	case SortPurchaseDate:
		return func(a, b model.Item) int {
			return purchaseTime(b).Compare(purchaseTime(a))
		}
	case SortProfitPercentage:
		return func(a, b model.Item) int {
			return cmp.Compare(valuation.ProfitPercentageValue(b), valuation.ProfitPercentageValue(a))
		}
	}
	return func(a, b model.Item) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	}
}

// purchaseTime parses the purchase date; unparseable dates sort as the zero time.
func purchaseTime(item model.Item) time.Time {
	t, err := model.ParseDate(item.PurchaseDate, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Categories returns the distinct categories in order of first appearance.
func Categories(items []model.Item) []string {
	seen := make(map[string]bool, len(items))
	categories := make([]string, 0)
	for _, item := range items {
		if seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		categories = append(categories, item.Category)
	}
	return categories
}
