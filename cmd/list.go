package cmd

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/etnz/cellar"
	"github.com/etnz/cellar/renderer"
	"github.com/google/subcommands"
)

type listCmd struct {
	status string
	ready  bool
	search string
	wtype  string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the wines by status" }
func (*listCmd) Usage() string {
	return `cellar list [-s cellar|wishlist|consumed] [-ready] [-type <type>] [<search>]

  Lists the records with the given status, the cellar by default. Consumed
  wines are listed most recent first, the others by vintage then name.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.status, "s", string(cellar.Cellar), "Status to list: cellar, wishlist or consumed")
	f.BoolVar(&c.ready, "ready", false, "Only list the wines ready to drink")
	f.StringVar(&c.wtype, "type", "", "Only list wines of this type")
}

func (c *listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	status, err := cellar.ParseStatus(c.status)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	var wtype cellar.WineType
	if c.wtype != "" {
		if wtype, err = cellar.ParseWineType(c.wtype); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
	}
	search := cellar.NormalizeName(strings.Join(f.Args(), " "))

	s, err := DecodeCellar()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	var records []cellar.Record
	_ = s.View(func(tx *cellar.Tx) error {
		records = tx.Select(status)
		return nil
	})

	y := year()
	records = slices.DeleteFunc(records, func(r cellar.Record) bool {
		switch {
		case c.ready && !r.IsReady(y):
			return true
		case wtype != "" && r.Type != wtype:
			return true
		case search != "" && !strings.Contains(searchText(r), search):
			return true
		}
		return false
	})
	sortRecords(status, records)

	title := map[cellar.Status]string{
		cellar.Cellar:   "Cellar",
		cellar.Wishlist: "Wishlist",
		cellar.Consumed: "Consumed",
	}[status]
	printMarkdown(renderer.RenderCellar(renderer.NewCellar(title, records, y)))
	return subcommands.ExitSuccess
}

// searchText is the searchable text of a record.
func searchText(r cellar.Record) string {
	return cellar.NormalizeName(strings.Join([]string{r.Label(), r.Producer, r.Appellation, r.VarietalsDisplay()}, " "))
}

func sortRecords(status cellar.Status, records []cellar.Record) {
	if status == cellar.Consumed {
		slices.SortStableFunc(records, func(a, b cellar.Record) int {
			if c := b.DateConsumed.Compare(a.DateConsumed); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		})
		return
	}
	slices.SortStableFunc(records, func(a, b cellar.Record) int {
		return cmp.Or(
			cmp.Compare(a.Vintage, b.Vintage),
			cmp.Compare(cellar.NormalizeName(a.Name), cellar.NormalizeName(b.Name)),
			cmp.Compare(a.ID, b.ID),
		)
	})
}
