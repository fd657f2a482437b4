package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cellar"
	"github.com/google/subcommands"
)

type editCmd struct {
	wine      wineFlags
	id        int64
	price     string
	date      string
	from      string
	stored    string
	notes     string
	drinkFrom int
	drinkTo   int
	rating    int
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "correct the description of a wine" }
func (*editCmd) Usage() string {
	return `cellar edit -id <record> [wine flags...] [-price <price>] [-drink-from <year>] [-drink-to <year>]

  Corrects the descriptive fields of a record. Only the flags given are
  changed. Bottle counts and status are changed by add and consume only.
  Correcting the name or vintage of a cellar record also corrects its
  consumed records, so the record matches its ledger entry again.

Usage Examples:
$ cellar edit -id 12 -name "Barolo Cannubi" -vintage 2015
$ cellar edit -id 12 -drink-from 2026 -drink-to 2040 -stored "Rack B"

`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	c.wine.SetFlags(f)
	f.Int64Var(&c.id, "id", 0, "Record to edit (required)")
	f.StringVar(&c.price, "price", "", `Current unit price, "45.50" or "45.50 EUR"`)
	f.StringVar(&c.date, "d", "", "Acquisition date (YYYY-MM-DD)")
	f.StringVar(&c.from, "from", "", "Where the bottles were bought")
	f.StringVar(&c.stored, "stored", "", "Storage location")
	f.StringVar(&c.notes, "notes", "", "Acquisition notes")
	f.IntVar(&c.drinkFrom, "drink-from", 0, "Start of the drinking window, 0 to clear")
	f.IntVar(&c.drinkTo, "drink-to", 0, "End of the drinking window, 0 to clear")
	f.IntVar(&c.rating, "rating", 0, "Rating out of 100, 0 to clear")
}

// apply copies the flags set on the command line onto r.
func (c *editCmd) apply(f *flag.FlagSet, r *cellar.Record) error {
	var err error
	f.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "name":
			vintage, name, size := cellar.ParseWineName(c.wine.name)
			if name == "" {
				err = fmt.Errorf("-name must not be empty")
				return
			}
			r.Name = name
			if vintage != 0 {
				r.Vintage = vintage
			}
			if size != 0 {
				r.SizeML = size
			}
		case "producer":
			r.Producer = c.wine.producer
		case "type":
			r.Type, err = cellar.ParseWineType(c.wine.wineType)
		case "appellation":
			r.Appellation = c.wine.appellation
		case "varietals":
			r.Varietals, err = parseVarietals(c.wine.varietals)
		case "alcohol":
			r.AlcoholPct = c.wine.alcohol
		case "description":
			r.Description = c.wine.description
		case "price":
			r.Price, err = parsePrice(c.price)
		case "d":
			r.AcqDate, err = parseDate(c.date)
		case "from":
			r.From = c.from
		case "stored":
			r.Stored = c.stored
		case "notes":
			r.AcqNotes = c.notes
		case "drink-from":
			r.DrinkFrom = c.drinkFrom
		case "drink-to":
			r.DrinkTo = c.drinkTo
		case "rating":
			r.Rating = c.rating
		}
	})
	if err != nil {
		return err
	}
	// explicit values win over the ones parsed from -name.
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "vintage":
			r.Vintage = c.wine.vintage
		case "size":
			r.SizeML = c.wine.size
		}
	})
	return nil
}

func (c *editCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == 0 {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		return subcommands.ExitUsageError
	}

	var r cellar.Record
	status := update(func(tx *cellar.Tx) error {
		w, err := tx.Get(cellar.ID(c.id))
		if err != nil {
			return err
		}
		if err := c.apply(f, &w); err != nil {
			return err
		}
		r, err = cellar.Edit(tx, w.ID, w)
		return err
	})
	if status == subcommands.ExitSuccess {
		fmt.Printf("#%d %s updated\n", r.ID, r.Label())
	}
	return status
}
