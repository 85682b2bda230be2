package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX workbook.
const (
	SummarySheet = "Riepilogo"
	ItemsSheet   = "Articoli"
)

var itemHeader = []any{
	"Nome", "Categoria", "Anno", "Prezzo Acquisto", "Data Acquisto",
	"Valore Attuale", "Prezzo Vendita", "Data Vendita", "Profitto/Perdita", "Profitto %", "Possesso",
}

// WriteXLSX writes the report as a workbook with a summary sheet and an item sheet.
func (r Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}
	if _, err := f.NewSheet(ItemsSheet); err != nil {
		return fmt.Errorf("creating item sheet: %w", err)
	}

	s := r.Summary
	summary := [][]any{
		{"Metrica", "Valore"},
		{"Totale Articoli", s.Count},
		{"Investimento Totale", s.TotalSpent},
		{"Valore Totale Attuale", s.TotalValue},
		{"Profitto/Perdita Totale", s.TotalProfit},
		{"Profitto Medio", s.AverageProfit},
		{"Articoli Venduti", s.SoldCount},
		{"Articoli in Possesso", s.UnsoldCount},
	}
	for i, row := range summary {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}

	if err := setRow(f, ItemsSheet, 1, itemHeader); err != nil {
		return err
	}
	for i, row := range r.Rows {
		item := row.Item
		var current, salePrice, saleDate any = item.CurrentValue, "Non venduto", "N/A"
		if item.Sold() {
			current, salePrice, saleDate = "Venduto", *item.SalePrice, item.SaleDate
		}
		values := []any{
			item.Name, item.Category, item.Year, item.PurchasePrice, item.PurchaseDate,
			current, salePrice, saleDate, row.Profit, row.ProfitPercentage, row.Holding,
		}
		if err := setRow(f, ItemsSheet, i+2, values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(ItemsSheet, "A", "A", 30); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 26); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}
