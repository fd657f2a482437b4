package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cellar"
	"github.com/google/subcommands"
)

type importCmd struct {
	csv    string
	author string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a cellar CSV export" }
func (*importCmd) Usage() string {
	return `cellar import -csv <file> [-author <name>]

  Imports the wines of a cellar management site CSV export. Rows with a
  quantity become cellar records, rows with only tasting notes become
  consumed records. Notes prefixed with "<author>:" are parsed as tasting
  notes, the others become the wine description.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.csv, "csv", "", "CSV file to import (required)")
	f.StringVar(&c.author, "author", "", "Author prefix of the tasting notes")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.csv == "" {
		fmt.Fprintln(os.Stderr, "Error: -csv is required")
		return subcommands.ExitUsageError
	}
	file, err := os.Open(c.csv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	var res cellar.ImportResult
	status := update(func(tx *cellar.Tx) (err error) {
		res, err = cellar.ImportCSV(tx, file, cellar.ImportOptions{Author: c.author, Currency: *defaultCurrency})
		return err
	})
	if status == subcommands.ExitSuccess {
		fmt.Printf("%d wines and %d tasting notes imported\n", res.Wines, res.Notes)
	}
	return status
}
