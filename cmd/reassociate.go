package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/cellar"
	"github.com/google/subcommands"
)

type reassociateCmd struct{}

func (*reassociateCmd) Name() string { return "reassociate" }
func (*reassociateCmd) Synopsis() string {
	return "move tasting notes from cellar records to their latest consumption"
}
func (*reassociateCmd) Usage() string {
	return `cellar reassociate

  Tasting notes written on a cellar record describe a bottle that was drunk.
  This moves them to the most recently consumed record split from it, dating
  them with its consumption date.
`
}

func (c *reassociateCmd) SetFlags(f *flag.FlagSet) {}

func (c *reassociateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var moved int
	status := update(func(tx *cellar.Tx) (err error) {
		moved, err = cellar.Reassociate(tx)
		return err
	})
	if status == subcommands.ExitSuccess {
		fmt.Printf("%d tasting notes moved\n", moved)
	}
	return status
}
