package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/report"
	"github.com/erazemk/datavault/internal/valuation"
)

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Fprintf(os.Stderr, "warning: cannot render markdown: %v\n", err)
	fmt.Print(md)
}

// itemsTable lists items as a Markdown table.
func itemsTable(items []model.Item, currency string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", english.Plural(len(items), "item", "items"))
	if len(items) == 0 {
		return b.String()
	}
	b.WriteString("| ID | Name | Category | Purchased | Price | Value | Profit | % | Held |\n")
	b.WriteString("|---:|---|---|---|---:|---:|---:|---:|---|\n")
	for _, item := range items {
		value := report.FormatMoney(item.CurrentValue, currency)
		if item.Sold() {
			value = "sold " + report.FormatMoney(*item.SalePrice, currency)
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s%% | %s |\n",
			item.ID,
			cell(item.Name),
			cell(item.Category),
			item.PurchaseDate,
			report.FormatMoney(item.PurchasePrice, currency),
			value,
			report.FormatMoney(valuation.Profit(item), currency),
			valuation.ProfitPercentage(item),
			valuation.HoldingDuration(item.PurchaseDate, item.SaleDate, now),
		)
	}
	return b.String()
}

// itemDetail describes a single item.
func itemDetail(item model.Item, currency string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", item.Name)
	fmt.Fprintf(&b, "- **ID:** %d\n", item.ID)
	fmt.Fprintf(&b, "- **Category:** %s\n", item.Category)
	fmt.Fprintf(&b, "- **Year:** %s\n", item.Year)
	fmt.Fprintf(&b, "- **Purchased:** %s for %s\n", item.PurchaseDate, report.FormatMoney(item.PurchasePrice, currency))
	fmt.Fprintf(&b, "- **Current value:** %s\n", report.FormatMoney(item.CurrentValue, currency))
	if item.Sold() {
		fmt.Fprintf(&b, "- **Sold:** %s for %s\n", item.SaleDate, report.FormatMoney(*item.SalePrice, currency))
	}
	fmt.Fprintf(&b, "- **Profit:** %s (%s%%)\n", report.FormatMoney(valuation.Profit(item), currency), valuation.ProfitPercentage(item))
	fmt.Fprintf(&b, "- **Held:** %s\n", valuation.HoldingDuration(item.PurchaseDate, item.SaleDate, now))
	fmt.Fprintf(&b, "- **Image:** %s\n", item.Image)
	fmt.Fprintf(&b, "- **Added:** %s\n", humanize.RelTime(time.UnixMilli(item.CreatedAt), now, "ago", "from now"))
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
