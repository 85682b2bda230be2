package model

import (
	"strings"
)

// Draft holds in-progress item data during create or edit, before it is validated
// and committed.
type Draft struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Year          string  `json:"year"`
	PurchasePrice float64 `json:"purchasePrice"`
	PurchaseDate  string  `json:"purchaseDate"`
	CurrentValue  float64 `json:"currentValue"`
	Image         string  `json:"image"`
}

// ValidationError lists the draft fields that block submission.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Validate checks the required fields. Prices must be non-zero.
func (d Draft) Validate() error {
	var fields []string
	if strings.TrimSpace(d.Name) == "" {
		fields = append(fields, "name")
	}
	if strings.TrimSpace(d.Category) == "" {
		fields = append(fields, "category")
	}
	if strings.TrimSpace(d.Year) == "" {
		fields = append(fields, "year")
	}
	if d.PurchasePrice == 0 {
		fields = append(fields, "purchasePrice")
	}
	if strings.TrimSpace(d.PurchaseDate) == "" {
		fields = append(fields, "purchaseDate")
	}
	if d.CurrentValue == 0 {
		fields = append(fields, "currentValue")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Item converts the draft to an unsaved item. Identity and creation time are
// assigned by the repository.
func (d Draft) Item() Item {
	image := strings.TrimSpace(d.Image)
	if image == "" {
		image = DefaultImage
	}
	return Item{
		Name:          strings.TrimSpace(d.Name),
		Category:      strings.TrimSpace(d.Category),
		Year:          strings.TrimSpace(d.Year),
		PurchasePrice: d.PurchasePrice,
		PurchaseDate:  strings.TrimSpace(d.PurchaseDate),
		CurrentValue:  d.CurrentValue,
		Image:         image,
	}
}

// DraftFrom returns the editable fields of an existing item.
func DraftFrom(i Item) Draft {
	return Draft{
		Name:          i.Name,
		Category:      i.Category,
		Year:          i.Year,
		PurchasePrice: i.PurchasePrice,
		PurchaseDate:  i.PurchaseDate,
		CurrentValue:  i.CurrentValue,
		Image:         i.Image,
	}
}
