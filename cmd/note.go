package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cellar"
	"github.com/google/subcommands"
)

type noteCmd struct {
	id   int64
	date string
	note noteFlags
}

func (*noteCmd) Name() string     { return "note" }
func (*noteCmd) Synopsis() string { return "add a tasting note to a record" }
func (*noteCmd) Usage() string {
	return `cellar note -id <record> [-d <date>] [note flags...]

  Attaches a tasting note to any record.
`
}

func (c *noteCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Record the note is about (required)")
	f.StringVar(&c.date, "d", "", "Tasting date (YYYY-MM-DD)")
	c.note.SetFlags(f)
}

func (c *noteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	note := c.note.note()
	if c.id == 0 || note == nil {
		fmt.Fprintln(os.Stderr, "Error: -id and at least one note flag are required")
		return subcommands.ExitUsageError
	}
	var err error
	if note.Date, err = parseDate(c.date); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	note.Wine = cellar.ID(c.id)

	var n cellar.Note
	status := update(func(tx *cellar.Tx) (err error) {
		n, err = tx.AddNote(*note)
		return err
	})
	if status == subcommands.ExitSuccess {
		fmt.Printf("note #%d added to #%d\n", n.ID, n.Wine)
	}
	return status
}
