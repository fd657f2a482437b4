package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cellar"
	"github.com/google/subcommands"
)

type consumeCmd struct {
	id        int64
	quantity  int
	date      string
	rating    int
	drinkFrom int
	drinkTo   int
	note      noteFlags
}

func (*consumeCmd) Name() string     { return "consume" }
func (*consumeCmd) Synopsis() string { return "record bottles drunk from the cellar" }
func (*consumeCmd) Usage() string {
	return `cellar consume -id <record> [-q <n>] [-d <date>] [-rating <1-100>] [note flags...]

  Records the consumption of bottles. When some bottles remain the record is
  split: a new consumed record takes the drunk bottles, with the rating and
  the tasting note. The quantity is capped to the bottles left.

Usage Examples:
$ cellar consume -id 12 -rating 93 -nose "tar, roses" -overall "Still young"

`
}

func (c *consumeCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Cellar record to drink from (required)")
	f.IntVar(&c.quantity, "q", 1, "Number of bottles")
	f.StringVar(&c.date, "d", "", "Consumption date (YYYY-MM-DD), today by default")
	f.IntVar(&c.rating, "rating", 0, "Rating out of 100")
	f.IntVar(&c.drinkFrom, "drink-from", 0, "Start of the drinking window")
	f.IntVar(&c.drinkTo, "drink-to", 0, "End of the drinking window")
	c.note.SetFlags(f)
}

func (c *consumeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == 0 {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		return subcommands.ExitUsageError
	}
	on, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	consumption := cellar.Consumption{
		Date:      on,
		Quantity:  c.quantity,
		Rating:    c.rating,
		DrinkFrom: c.drinkFrom,
		DrinkTo:   c.drinkTo,
		Note:      c.note.note(),
	}

	var r cellar.Record
	status := update(func(tx *cellar.Tx) (err error) {
		r, err = cellar.Consume(tx, cellar.ID(c.id), consumption)
		return err
	})
	if status == subcommands.ExitSuccess {
		fmt.Printf("#%d %s: %d bottles consumed on %s\n", r.ID, r.Label(), r.Quantity, r.DateConsumed)
	}
	return status
}
