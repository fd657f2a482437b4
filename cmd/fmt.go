package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cellar"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	output string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and rewrites the cellar file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `cellar fmt [-o <file>]

  Loads the cellar, warns about cellar records whose bottle counts do not add
  up, and writes it back in canonical form. With -o the cellar is written to
  another file instead, which converts between the .jsonl and .db formats.

Usage Examples:
# Moves a JSON lines cellar into SQLite.
$ cellar -file cellar.jsonl fmt -o cellar.db

`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Write to this file instead of the cellar file")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := DecodeCellar()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	log := Logger()
	_ = s.View(func(tx *cellar.Tx) error {
		for _, id := range tx.Unbalanced() {
			r, _ := tx.Record(id)
			log.WithField("wine", r.Label()).Warnf("record %d is unbalanced, run 'cellar reconcile'", id)
		}
		return nil
	})

	target := *cellarFile
	if c.output != "" {
		target = c.output
	}
	st, err := openStorage(target)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	defer st.Close()
	if err := st.Save(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", target, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Cellar file '%s' has been formatted.\n", target)
	return subcommands.ExitSuccess
}
