package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cellar"
	"github.com/google/subcommands"
)

type addCmd struct {
	wine     wineFlags
	id       int64
	quantity int
	price    string
	date     string
	from     string
	stored   string
	notes    string
	onOrder  bool
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add bottles to the cellar" }
func (*addCmd) Usage() string {
	return `cellar add -name <wine> [-q <n>] [-price <price>] [wine flags...]
cellar add -id <record> [-q <n>] [-price <price>]

  Records an acquisition. Without -id a new cellar record is created from the
  wine flags. With -id the bottles are merged into an existing record: a
  consumed or wishlist record moves back to the cellar.

Usage Examples:
$ cellar add -name "2016 Barolo Cannubi" -producer Brezza -q 6 -price 45.50 -stored "Rack A"
$ cellar add -id 12 -q 2 -price "39 EUR" -from "Wine shop"

`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	c.wine.SetFlags(f)
	f.Int64Var(&c.id, "id", 0, "Merge into this record instead of creating a new one")
	f.IntVar(&c.quantity, "q", 1, "Number of bottles")
	f.StringVar(&c.price, "price", "", `Unit price, "45.50" or "45.50 EUR"`)
	f.StringVar(&c.date, "d", "", "Acquisition date (YYYY-MM-DD), today by default")
	f.StringVar(&c.from, "from", "", "Where the bottles were bought")
	f.StringVar(&c.stored, "stored", "", "Storage location")
	f.StringVar(&c.notes, "notes", "", "Acquisition notes")
	f.BoolVar(&c.onOrder, "on-order", false, "The bottles are ordered but not delivered yet")
}

func (c *addCmd) acquisition() (cellar.Acquisition, error) {
	a := cellar.Acquisition{
		Quantity: c.quantity,
		From:     c.from,
		Stored:   c.stored,
		Notes:    c.notes,
		OnOrder:  c.onOrder,
	}
	var err error
	if a.Date, err = parseDate(c.date); err != nil {
		return a, err
	}
	if a.Price, err = parsePrice(c.price); err != nil {
		return a, err
	}
	if c.id == 0 {
		if a.Wine, err = c.wine.record(); err != nil {
			return a, err
		}
		a.AlcoholPct, a.Description = a.Wine.AlcoholPct, a.Wine.Description
	}
	return a, nil
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := c.acquisition()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	if a.Date.IsZero() {
		a.Date = today()
	}

	var r cellar.Record
	status := update(func(tx *cellar.Tx) (err error) {
		r, err = cellar.Acquire(tx, cellar.ID(c.id), a)
		return err
	})
	if status == subcommands.ExitSuccess {
		fmt.Printf("#%d %s: %d bottles in the cellar\n", r.ID, r.Label(), r.Quantity)
	}
	return status
}

type wishCmd struct {
	wine  wineFlags
	price string
	from  string
	notes string
}

func (*wishCmd) Name() string     { return "wish" }
func (*wishCmd) Synopsis() string { return "add a wine to the wishlist" }
func (*wishCmd) Usage() string {
	return `cellar wish -name <wine> [-price <price>] [-from <shop>] [wine flags...]

  Creates a wishlist record. It holds no bottle until it is acquired with
  'cellar add -id'.
`
}

func (c *wishCmd) SetFlags(f *flag.FlagSet) {
	c.wine.SetFlags(f)
	f.StringVar(&c.price, "price", "", "Expected unit price")
	f.StringVar(&c.from, "from", "", "Where to buy it")
	f.StringVar(&c.notes, "notes", "", "Notes")
}

func (c *wishCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	wine, err := c.wine.record()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	price, err := parsePrice(c.price)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	a := cellar.Acquisition{
		Wine:        wine,
		Price:       price,
		From:        c.from,
		Notes:       c.notes,
		AlcoholPct:  wine.AlcoholPct,
		Description: wine.Description,
		Wishlist:    true,
	}

	var r cellar.Record
	status := update(func(tx *cellar.Tx) (err error) {
		r, err = cellar.Acquire(tx, 0, a)
		return err
	})
	if status == subcommands.ExitSuccess {
		fmt.Printf("#%d %s added to the wishlist\n", r.ID, r.Label())
	}
	return status
}
