package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/etnz/cellar"
	"github.com/etnz/cellar/renderer"
	"github.com/google/subcommands"
)

type showCmd struct{}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "show a record with its history" }
func (*showCmd) Usage() string {
	return `cellar show <record>

  Shows a record, the consumed records split from it and every tasting note
  attached to either.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {}

func (c *showCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one record id")
		return subcommands.ExitUsageError
	}
	id, err := strconv.ParseInt(f.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid record id %q\n", f.Arg(0))
		return subcommands.ExitUsageError
	}

	s, err := DecodeCellar()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	var detail *renderer.WineDetail
	err = s.View(func(tx *cellar.Tx) error {
		r, err := tx.Get(cellar.ID(id))
		if err != nil {
			return err
		}
		var parent *cellar.Record
		if p, ok := tx.Record(r.ParentID); ok {
			parent = &p
		}
		children := tx.Children(r.ID)
		notes := tx.Notes(r.ID)
		for _, child := range children {
			notes = append(notes, tx.Notes(child.ID)...)
		}
		detail = renderer.NewWineDetail(r, parent, children, notes, year())
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderWine(detail))
	return subcommands.ExitSuccess
}
