package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cellar"
	"github.com/google/subcommands"
)

type rmCmd struct {
	id int64
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete a record" }
func (*rmCmd) Usage() string {
	return `cellar rm -id <record>

  Deletes a record and its tasting notes. Records with consumed children
  cannot be deleted.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Record to delete (required)")
}

func (c *rmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == 0 {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		return subcommands.ExitUsageError
	}
	status := update(func(tx *cellar.Tx) error {
		return tx.Delete(cellar.ID(c.id))
	})
	if status == subcommands.ExitSuccess {
		fmt.Printf("#%d deleted\n", c.id)
	}
	return status
}
