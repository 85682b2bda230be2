package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/report"
	"github.com/erazemk/datavault/internal/suggest"
)

type suggestCmd struct{}

func (*suggestCmd) Name() string     { return "suggest" }
func (*suggestCmd) Synopsis() string { return "propose item fields for a product name" }
func (*suggestCmd) Usage() string {
	return `datavault suggest <product name>

  Asks the completion service for category, year, prices, purchase date and
  image of the named product. Nothing is saved; use add -suggest for that.
`
}
func (*suggestCmd) SetFlags(*flag.FlagSet) {}

func (*suggestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.TrimSpace(strings.Join(f.Args(), " "))
	if name == "" {
		return usageError("a product name is required")
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	g, err := a.requireGateway()
	if err != nil {
		return fail(err)
	}
	d := model.Draft{Name: name}
	if err := g.Complete(ctx, &d); err != nil {
		return fail(err)
	}

	cur := a.cfg.Currency
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Name)
	fmt.Fprintf(&b, "- **Category:** %s\n", d.Category)
	fmt.Fprintf(&b, "- **Year:** %s\n", d.Year)
	fmt.Fprintf(&b, "- **Purchase price:** %s\n", report.FormatMoney(d.PurchasePrice, cur))
	fmt.Fprintf(&b, "- **Purchase date:** %s\n", d.PurchaseDate)
	fmt.Fprintf(&b, "- **Current value:** %s\n", report.FormatMoney(d.CurrentValue, cur))
	if d.Image != "" {
		fmt.Fprintf(&b, "- **Image:** %s\n", d.Image)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type estimateCmd struct {
	scale string
}

func (*estimateCmd) Name() string     { return "estimate" }
func (*estimateCmd) Synopsis() string { return "rate an item's rarity, demand, longevity and trend" }
func (*estimateCmd) Usage() string {
	return `datavault estimate [-scale numeric|text] <id>

  Estimations count against the daily limit; failed ones do not.
`
}

func (c *estimateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scale, "scale", string(suggest.ScaleNumeric), "numeric (1-10) or text")
}

func (c *estimateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := idArg(f)
	if err != nil {
		return usageError("%v", err)
	}
	scale, ok := suggest.ParseScale(c.scale)
	if !ok {
		return usageError("-scale must be numeric or text")
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	g, err := a.requireGateway()
	if err != nil {
		return fail(err)
	}
	item, found := a.repo.Get(id)
	if !found {
		return fail(fmt.Errorf("item %d not found", id))
	}

	e, err := g.Estimate(ctx, item, scale)
	if err != nil {
		if suggest.IsRateLimited(err) {
			u := g.Limiter().Usage()
			fmt.Fprintf(os.Stderr, "Daily limit of %d estimations reached; resets %s.\n", u.Limit, humanize.Time(u.ResetAt))
			return subcommands.ExitFailure
		}
		return fail(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", item.Name)
	b.WriteString("| Factor | Rating |\n|---|---|\n")
	fmt.Fprintf(&b, "| Rarity | %s |\n", e.Rarity)
	fmt.Fprintf(&b, "| Market demand | %s |\n", e.MarketDemand)
	fmt.Fprintf(&b, "| Longevity | %s |\n", e.Longevity)
	fmt.Fprintf(&b, "| Market trends | %s |\n", e.MarketTrends)
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type usageCmd struct{}

func (*usageCmd) Name() string           { return "usage" }
func (*usageCmd) Synopsis() string       { return "show how many estimations are left today" }
func (*usageCmd) Usage() string          { return "datavault usage\n" }
func (*usageCmd) SetFlags(*flag.FlagSet) {}

func (*usageCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	g, err := a.requireGateway()
	if err != nil {
		return fail(err)
	}
	fmt.Println(usageLine(g.Limiter().Usage(), time.Now()))
	return subcommands.ExitSuccess
}

func usageLine(u suggest.Usage, now time.Time) string {
	return fmt.Sprintf("%d of %d estimations used today, %d left; resets %s.",
		u.Used, u.Limit, u.Remaining, humanize.RelTime(u.ResetAt, now, "ago", "from now"))
}
