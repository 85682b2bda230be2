// Package report renders the collection as Markdown, HTML, terminal text or an
// XLSX workbook.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/stats"
	"github.com/erazemk/datavault/internal/valuation"
)

// Title heads every report.
const Title = "Report Articoli Vintage"

// Row is one item with its derived metrics.
type Row struct {
	Item             model.Item
	Profit           float64
	ProfitPercentage string
	Holding          string
}

// Report is a snapshot of the collection ready to render.
type Report struct {
	Generated time.Time
	Currency  string
	Summary   stats.Summary
	Rows      []Row
}

// Build computes the summary and per-item metrics for items, in the given order.
func Build(items []model.Item, currency string, now time.Time) Report {
	if currency == "" {
		currency = DefaultCurrency
	}
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = Row{
			Item:             item.Clone(),
			Profit:           valuation.Profit(item),
			ProfitPercentage: valuation.ProfitPercentage(item),
			Holding:          valuation.HoldingDuration(item.PurchaseDate, item.SaleDate, now),
		}
	}
	return Report{
		Generated: now,
		Currency:  currency,
		Summary:   stats.Compute(items),
		Rows:      rows,
	}
}

func (r Report) money(v float64) string {
	return FormatMoney(v, r.Currency)
}

// Markdown renders the report as GitHub-flavoured Markdown.
func (r Report) Markdown() string {
	var b strings.Builder
	s := r.Summary

	fmt.Fprintf(&b, "# %s\n\n", Title)
	fmt.Fprintf(&b, "Data: %s\n\n", model.FormatDate(r.Generated))

	b.WriteString("## Riepilogo\n\n")
	b.WriteString("| Metrica | Valore |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Totale articoli | %d |\n", s.Count)
	fmt.Fprintf(&b, "| Investimento totale | %s |\n", r.money(s.TotalSpent))
	fmt.Fprintf(&b, "| Valore totale attuale | %s |\n", r.money(s.TotalValue))
	fmt.Fprintf(&b, "| Profitto/Perdita totale | %s |\n", r.money(s.TotalProfit))
	fmt.Fprintf(&b, "| Profitto medio | %s |\n", r.money(s.AverageProfit))
	fmt.Fprintf(&b, "| Articoli venduti | %d |\n", s.SoldCount)
	fmt.Fprintf(&b, "| Articoli in possesso | %d |\n", s.UnsoldCount)
	if s.MostProfitable != nil {
		fmt.Fprintf(&b, "| Articolo più redditizio | %s |\n", escape(s.MostProfitable.Name))
	}

	b.WriteString("\n## Articoli\n")
	if len(r.Rows) == 0 {
		b.WriteString("\nNessun articolo.\n")
	}
	for i, row := range r.Rows {
		item := row.Item
		fmt.Fprintf(&b, "\n### %d. %s (%s)\n\n", i+1, escape(item.Name), escape(item.Year))
		fmt.Fprintf(&b, "- Categoria: %s\n", escape(item.Category))
		fmt.Fprintf(&b, "- Prezzo d'acquisto: %s\n", r.money(item.PurchasePrice))
		fmt.Fprintf(&b, "- Data d'acquisto: %s\n", item.PurchaseDate)
		if item.Sold() {
			fmt.Fprintf(&b, "- Prezzo di vendita: %s\n", r.money(*item.SalePrice))
			fmt.Fprintf(&b, "- Data di vendita: %s\n", item.SaleDate)
		} else {
			fmt.Fprintf(&b, "- Valore attuale: %s\n", r.money(item.CurrentValue))
		}
		fmt.Fprintf(&b, "- Profitto/Perdita: %s (%s%%)\n", r.money(row.Profit), row.ProfitPercentage)
		fmt.Fprintf(&b, "- Periodo di possesso: %s\n", row.Holding)
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "|", `\|`, "*", `\*`, "_", `\_`, "#", `\#`, "`", "\\`", "<", "&lt;",
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
