package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cellar"
	"github.com/etnz/cellar/renderer"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type reconcileCmd struct {
	ledger  string
	notes   bool
	dryRun  bool
	metrics string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "repair the cellar from an external transaction ledger" }
func (*reconcileCmd) Usage() string {
	return `cellar reconcile -ledger <file|url> [-notes] [-dry-run] [-metrics <file>]

  Reads an external ledger of acquisitions and consumptions (a JSON array or
  JSON lines, from a file or an http(s) url) and repairs the cellar:

  1. matched cellar records receive the acquisition facts and counters,
  2. consumed records without parent are linked to their cellar record,
  3. missing consumed records are created, undated ones receive a date.

  Running it twice on the same ledger changes nothing the second time.
  With -notes, tasting notes left on cellar records then move to their most
  recent consumption.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "ledger", "", "External ledger file or url (required)")
	f.BoolVar(&c.notes, "notes", false, "Move tasting notes to the consumed records afterwards")
	f.BoolVar(&c.dryRun, "dry-run", false, "Report without saving")
	f.StringVar(&c.metrics, "metrics", "", "Write the report as prometheus gauges into this file")
}

func (c *reconcileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ledger == "" {
		fmt.Fprintln(os.Stderr, "Error: -ledger is required")
		return subcommands.ExitUsageError
	}
	log := Logger()

	entries, err := cellar.OpenExternalLedger(c.ledger, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	s, err := DecodeCellar()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	rc := cellar.Reconciler{Log: log, Currency: *defaultCurrency}
	rep, err := rc.Reconcile(s, entries)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if c.notes {
		var moved int
		if err := s.Update(func(tx *cellar.Tx) (err error) {
			moved, err = cellar.Reassociate(tx)
			return err
		}); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		log.WithFields(logrus.Fields{"moved": moved}).Info("tasting notes reassociated")
	}

	if !c.dryRun {
		if err := EncodeCellar(s); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
	}
	if c.metrics != "" {
		if err := writeMetrics(c.metrics, rep); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing metrics:", err)
			return subcommands.ExitFailure
		}
	}

	var view *renderer.Reconciliation
	_ = s.View(func(tx *cellar.Tx) error {
		view = renderer.NewReconciliation(c.ledger, rep, c.dryRun, tx.Record)
		return nil
	})
	printMarkdown(renderer.RenderReconciliation(view))
	return subcommands.ExitSuccess
}
