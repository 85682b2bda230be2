package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestItemSold(t *testing.T) {
	item := Item{CurrentValue: 120}
	if item.Sold() {
		t.Error("item without sale price should be unsold")
	}
	if got := item.RealizedValue(); got != 120 {
		t.Errorf("RealizedValue() = %v, want 120", got)
	}

	item.SalePrice = Price(150)
	if !item.Sold() {
		t.Error("item with sale price should be sold")
	}
	if got := item.RealizedValue(); got != 150 {
		t.Errorf("RealizedValue() = %v, want 150 (sale price takes precedence)", got)
	}
}

func TestItemCloneIsDeep(t *testing.T) {
	item := Item{ID: 1, SalePrice: Price(10)}
	clone := item.Clone()
	*clone.SalePrice = 99

	if *item.SalePrice != 10 {
		t.Errorf("mutating clone changed original sale price to %v", *item.SalePrice)
	}
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		Name:          "Orologio",
		Category:      "Gioielli",
		Year:          "1965",
		PurchasePrice: 100,
		PurchaseDate:  "01/01/2020",
		CurrentValue:  100,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid draft: %v", err)
	}

	err := Draft{Name: "  ", Year: "1965", PurchaseDate: "01/01/2020"}.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"name", "category", "purchasePrice", "currentValue"}
	if !reflect.DeepEqual(verr.Fields, want) {
		t.Errorf("fields = %v, want %v", verr.Fields, want)
	}
}

func TestDraftItemDefaultsImage(t *testing.T) {
	item := Draft{Name: " Radio ", Category: "Elettronica"}.Item()
	if item.Image != DefaultImage {
		t.Errorf("expected default image, got %q", item.Image)
	}
	if item.Name != "Radio" {
		t.Errorf("expected trimmed name, got %q", item.Name)
	}
	if item.Sold() {
		t.Error("new item should not be sold")
	}
}
