package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/query"
	"github.com/erazemk/datavault/internal/report"
	"github.com/erazemk/datavault/internal/stats"
)

type statsCmd struct {
	status   string
	category string
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "summarize the collection" }
func (*statsCmd) Usage() string {
	return "datavault stats [-status all|sold|unsold] [-category <name>]\n"
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.status, "status", model.StatusAll, "sale status filter")
	f.StringVar(&c.category, "category", query.CategoryAll, "exact category filter")
}

func (c *statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	status, err := query.ParseStatus(c.status)
	if err != nil {
		return usageError("%v", err)
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	items := query.Apply(a.repo.Items(), query.Spec{Status: status, Category: c.category})
	printMarkdown(statsMarkdown(stats.Compute(items), a.repo.Categories(), a.cfg.Currency))
	return subcommands.ExitSuccess
}

func statsMarkdown(s stats.Summary, categories []string, currency string) string {
	var b strings.Builder
	b.WriteString("# Collection\n\n")
	b.WriteString("| | |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Items | %s |\n", humanize.Comma(int64(s.Count)))
	fmt.Fprintf(&b, "| Sold | %s |\n", humanize.Comma(int64(s.SoldCount)))
	fmt.Fprintf(&b, "| Held | %s |\n", humanize.Comma(int64(s.UnsoldCount)))
	fmt.Fprintf(&b, "| Total spent | %s |\n", report.FormatMoney(s.TotalSpent, currency))
	fmt.Fprintf(&b, "| Total value | %s |\n", report.FormatMoney(s.TotalValue, currency))
	fmt.Fprintf(&b, "| Total profit | %s |\n", report.FormatMoney(s.TotalProfit, currency))
	fmt.Fprintf(&b, "| Average profit | %s |\n", report.FormatMoney(s.AverageProfit, currency))
	if s.MostProfitable != nil {
		fmt.Fprintf(&b, "| Most profitable | %s (#%d) |\n", cell(s.MostProfitable.Name), s.MostProfitable.ID)
	}
	if len(categories) > 0 {
		fmt.Fprintf(&b, "\nCategories: %s\n", strings.Join(categories, ", "))
	}
	return b.String()
}

type reportCmd struct {
	format string
	output string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "export a report of the whole collection" }
func (*reportCmd) Usage() string {
	return `datavault report [-format md|html|text|xlsx] [-o <file>]

  Writes to standard output unless -o is given. XLSX always needs -o.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "text", "report format")
	f.StringVar(&c.output, "o", "", "output file")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	format, err := report.ParseFormat(c.format)
	if err != nil {
		return usageError("%v", err)
	}
	if format == report.FormatXLSX && c.output == "" {
		return usageError("xlsx reports need -o, e.g. -o %s", format.Filename())
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	r := report.Build(a.repo.Items(), a.cfg.Currency, time.Now())

	if c.output == "" && format == report.FormatTerminal {
		out, err := r.Terminal("auto")
		if err != nil {
			return fail(err)
		}
		fmt.Print(out)
		return subcommands.ExitSuccess
	}

	var w io.Writer = os.Stdout
	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			return fail(err)
		}
		defer f.Close()
		w = f
	}
	if err := r.Write(w, format); err != nil {
		return fail(err)
	}
	if c.output != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s.\n", c.output)
	}
	return subcommands.ExitSuccess
}
