package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/google/subcommands"

	"github.com/erazemk/datavault/internal/inventory"
	"github.com/erazemk/datavault/internal/model"
	"github.com/erazemk/datavault/internal/query"
	"github.com/erazemk/datavault/internal/store"
	"github.com/erazemk/datavault/internal/suggest"
)

// fail prints err and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return subcommands.ExitFailure
}

// usageError reports a bad invocation.
func usageError(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitUsageError
}

// idArg parses the single item id argument.
func idArg(f *flag.FlagSet) (int64, error) {
	if f.NArg() != 1 {
		return 0, errors.New("expected exactly one item id")
	}
	id, err := strconv.ParseInt(f.Arg(0), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q", f.Arg(0))
	}
	return id, nil
}

type listCmd struct {
	search   string
	status   string
	category string
	sort     string
	order    string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list items, filtered and sorted" }
func (*listCmd) Usage() string {
	return `datavault list [-q <text>] [-status all|sold|unsold] [-category <name>] [-sort <key>] [-order asc|desc]

  Sort keys: createdAt (default), profit, purchaseDate, profitPercentage.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.search, "q", "", "case-insensitive search on name or category")
	f.StringVar(&c.status, "status", model.StatusAll, "sale status filter")
	f.StringVar(&c.category, "category", query.CategoryAll, "exact category filter")
	f.StringVar(&c.sort, "sort", "", "sort key")
	f.StringVar(&c.order, "order", "desc", "sort direction")
}

func (c *listCmd) spec() (query.Spec, error) {
	status, err := query.ParseStatus(c.status)
	if err != nil {
		return query.Spec{}, err
	}
	key, err := query.ParseSortKey(c.sort)
	if err != nil {
		return query.Spec{}, err
	}
	dir, err := query.ParseDirection(c.order)
	if err != nil {
		return query.Spec{}, err
	}
	return query.Spec{Search: c.search, Status: status, Category: c.category, SortKey: key, Direction: dir}, nil
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	spec, err := c.spec()
	if err != nil {
		return usageError("%v", err)
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	printMarkdown(itemsTable(query.Apply(a.repo.Items(), spec), a.cfg.Currency, time.Now()))
	return subcommands.ExitSuccess
}

type showCmd struct{}

func (*showCmd) Name() string           { return "show" }
func (*showCmd) Synopsis() string       { return "show one item with its derived metrics" }
func (*showCmd) Usage() string          { return "datavault show <id>\n" }
func (*showCmd) SetFlags(*flag.FlagSet) {}

func (*showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := idArg(f)
	if err != nil {
		return usageError("%v", err)
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	item, ok := a.repo.Get(id)
	if !ok {
		return fail(fmt.Errorf("item %d not found", id))
	}
	printMarkdown(itemDetail(item, a.cfg.Currency, time.Now()))
	return subcommands.ExitSuccess
}

// draftFlags binds the editable item fields to flags.
type draftFlags struct {
	d model.Draft
}

func (df *draftFlags) register(f *flag.FlagSet) {
	f.StringVar(&df.d.Name, "name", "", "item name")
	f.StringVar(&df.d.Category, "category", "", "category")
	f.StringVar(&df.d.Year, "year", "", "year of origin")
	f.Float64Var(&df.d.PurchasePrice, "price", 0, "purchase price")
	f.StringVar(&df.d.PurchaseDate, "purchased", "", "purchase date, dd/mm/yyyy or ddmmyyyy")
	f.Float64Var(&df.d.CurrentValue, "value", 0, "current value")
	f.StringVar(&df.d.Image, "image", "", "image URL")
}

// overlay copies the flags that were set on the command line onto d.
func (df *draftFlags) overlay(f *flag.FlagSet, d *model.Draft) {
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			d.Name = df.d.Name
		case "category":
			d.Category = df.d.Category
		case "year":
			d.Year = df.d.Year
		case "price":
			d.PurchasePrice = df.d.PurchasePrice
		case "purchased":
			d.PurchaseDate = model.FormatDateInput(df.d.PurchaseDate)
		case "value":
			d.CurrentValue = df.d.CurrentValue
		case "image":
			d.Image = df.d.Image
		}
	})
}

type addCmd struct {
	draftFlags
	suggest bool
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add an item to the collection" }
func (*addCmd) Usage() string {
	return `datavault add -name <name> [-category ...] [-year ...] [-price ...] [-purchased ...] [-value ...] [-image ...] [-suggest]

  With -suggest, the completion service proposes the remaining fields from the
  name first; flags given explicitly take precedence over the proposal.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	c.register(f)
	f.BoolVar(&c.suggest, "suggest", false, "fill fields from a suggestion for the name")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	var d model.Draft
	c.overlay(f, &d)
	if c.suggest {
		g, err := a.requireGateway()
		if err != nil {
			return fail(err)
		}
		if err := g.Complete(ctx, &d); err != nil {
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				return fail(err)
			}
			fmt.Fprintf(os.Stderr, "warning: no suggestion (%s): %v\n", suggest.Kind(err), err)
		} else {
			c.overlay(f, &d)
		}
	}
	d.PurchaseDate = model.NormalizeDate(d.PurchaseDate)
	if err := d.Validate(); err != nil {
		return fail(err)
	}

	item, err := a.repo.Add(ctx, d.Item())
	if err != nil {
		return fail(err)
	}
	printMarkdown(itemDetail(item, a.cfg.Currency, time.Now()))
	return subcommands.ExitSuccess
}

type editCmd struct {
	draftFlags
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change the editable fields of an item" }
func (*editCmd) Usage() string {
	return `datavault edit [-name ...] [-category ...] [-year ...] [-price ...] [-purchased ...] [-value ...] [-image ...] <id>

  Only the fields given as flags change. Sale details are kept.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := idArg(f)
	if err != nil {
		return usageError("%v", err)
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	item, ok := a.repo.Get(id)
	if !ok {
		return fail(fmt.Errorf("item %d not found", id))
	}
	d := model.DraftFrom(item)
	c.overlay(f, &d)
	d.PurchaseDate = model.NormalizeDate(d.PurchaseDate)
	if err := d.Validate(); err != nil {
		return fail(err)
	}

	updated := d.Item()
	updated.ID = id
	if _, err := a.repo.Update(ctx, updated); err != nil {
		return fail(err)
	}
	item, _ = a.repo.Get(id)
	printMarkdown(itemDetail(item, a.cfg.Currency, time.Now()))
	return subcommands.ExitSuccess
}

type sellCmd struct {
	price float64
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record the sale of an item, dated today" }
func (*sellCmd) Usage() string    { return "datavault sell -price <amount> <id>\n" }

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.price, "price", -1, "sale price")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := idArg(f)
	if err != nil {
		return usageError("%v", err)
	}
	if c.price < 0 {
		return usageError("-price is required and must not be negative")
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	item, ok := a.repo.Get(id)
	if !ok {
		return fail(fmt.Errorf("item %d not found", id))
	}
	if _, err := a.repo.Sell(ctx, id, c.price); errors.Is(err, inventory.ErrAlreadySold) {
		return fail(fmt.Errorf("item %d was already sold on %s", id, item.SaleDate))
	} else if err != nil {
		return fail(err)
	}
	item, _ = a.repo.Get(id)
	printMarkdown(itemDetail(item, a.cfg.Currency, time.Now()))
	return subcommands.ExitSuccess
}

type revalueCmd struct {
	value float64
}

func (*revalueCmd) Name() string     { return "revalue" }
func (*revalueCmd) Synopsis() string { return "set the current value of an unsold item" }
func (*revalueCmd) Usage() string    { return "datavault revalue -value <amount> <id>\n" }

func (c *revalueCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.value, "value", -1, "new current value")
}

func (c *revalueCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := idArg(f)
	if err != nil {
		return usageError("%v", err)
	}
	if c.value < 0 {
		return usageError("-value is required and must not be negative")
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	item, ok := a.repo.Get(id)
	if !ok {
		return fail(fmt.Errorf("item %d not found", id))
	}
	if item.Sold() {
		return fail(fmt.Errorf("item %d is sold and cannot be revalued", id))
	}
	if _, err := a.repo.Revalue(ctx, id, c.value); err != nil {
		return fail(err)
	}
	item, _ = a.repo.Get(id)
	printMarkdown(itemDetail(item, a.cfg.Currency, time.Now()))
	return subcommands.ExitSuccess
}

type deleteCmd struct{}

func (*deleteCmd) Name() string           { return "delete" }
func (*deleteCmd) Synopsis() string       { return "remove an item and its stored photo" }
func (*deleteCmd) Usage() string          { return "datavault delete <id>\n" }
func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (*deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	id, err := idArg(f)
	if err != nil {
		return usageError("%v", err)
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	found, err := a.repo.Remove(ctx, id)
	if err != nil {
		return fail(err)
	}
	if !found {
		return fail(fmt.Errorf("item %d not found", id))
	}
	if err := store.DeleteItemImage(ctx, a.db, id); err != nil {
		return fail(err)
	}
	fmt.Printf("Deleted item %d.\n", id)
	return subcommands.ExitSuccess
}

type seedCmd struct {
	count int
	seed  uint64
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "add random demo items" }
func (*seedCmd) Usage() string    { return "datavault seed [-n <count>] [-seed <n>]\n" }

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.count, "n", 10, "number of items to add")
	f.Uint64Var(&c.seed, "seed", 0, "random seed (0 picks one)")
}

func (c *seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.count <= 0 {
		return usageError("-n must be positive")
	}
	a, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	seed := c.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	for range c.count {
		if _, err := a.repo.Add(ctx, inventory.RandomItem(rng, time.Now())); err != nil {
			return fail(err)
		}
	}
	fmt.Printf("Added %d demo items (seed %d).\n", c.count, seed)
	return subcommands.ExitSuccess
}
