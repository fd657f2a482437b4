package renderer

import (
	"github.com/etnz/cellar"
)

// Reconciliation is a reconciliation report ready for display.
type Reconciliation struct {
	DryRun     bool
	Source     string
	Report     cellar.Report
	Mutations  int
	Orphans    []Wine
	Unbalanced []Wine
}

// NewReconciliation resolves the records a report points to. lookup returns
// false for records that no longer exist, they are then skipped.
func NewReconciliation(source string, rep cellar.Report, dryRun bool, lookup func(cellar.ID) (cellar.Record, bool)) *Reconciliation {
	r := &Reconciliation{
		DryRun:    dryRun,
		Source:    source,
		Report:    rep,
		Mutations: rep.Mutations(),
	}
	for _, id := range rep.Orphans {
		if rec, ok := lookup(id); ok {
			r.Orphans = append(r.Orphans, NewWine(rec, 0))
		}
	}
	for _, id := range rep.Unbalanced {
		if rec, ok := lookup(id); ok {
			r.Unbalanced = append(r.Unbalanced, NewWine(rec, 0))
		}
	}
	return r
}
