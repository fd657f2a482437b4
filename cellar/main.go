// Command cellar manages a wine cellar: acquisitions, consumptions, tasting
// notes and reconciliation against an external transaction ledger.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/cellar/cmd"
	"github.com/google/subcommands"
)

func main() {
	// Answers shell completion requests, and exits, when run by the shell.
	completion().Complete("cellar")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	// Unknown subcommands are looked up as cellar-<name> extensions in the PATH.
	if name := flag.Arg(0); name != "" && !registered(commander, name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(commander *subcommands.Commander, name string) (found bool) {
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		if c.Name() == name {
			found = true
		}
	})
	return found
}
