package cmd

import (
	"github.com/etnz/cellar"
	"github.com/prometheus/client_golang/prometheus"
)

// writeMetrics writes the report as gauges in the node exporter textfile
// format.
func writeMetrics(path string, rep cellar.Report) error {
	entries := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cellar",
		Subsystem: "reconcile",
		Name:      "entries",
		Help:      "External ledger entries by outcome.",
	}, []string{"outcome"})
	records := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cellar",
		Subsystem: "reconcile",
		Name:      "records",
		Help:      "Cellar records by reconciliation change.",
	}, []string{"change"})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cellar",
		Subsystem: "reconcile",
		Name:      "last_run_timestamp_seconds",
		Help:      "Time of the last reconciliation.",
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(entries, records, lastRun)

	for outcome, n := range map[string]int{
		"read":      rep.Entries,
		"malformed": rep.Malformed,
		"matched":   rep.Matched,
		"rejected":  rep.Rejected,
		"unmatched": len(rep.Unmatched),
		"satisfied": rep.Satisfied,
	} {
		entries.WithLabelValues(outcome).Set(float64(n))
	}
	for change, n := range map[string]int{
		"updated":    rep.Updated,
		"linked":     rep.Linked,
		"created":    rep.Created,
		"backfilled": rep.Backfilled,
		"orphan":     len(rep.Orphans),
		"unbalanced": len(rep.Unbalanced),
	} {
		records.WithLabelValues(change).Set(float64(n))
	}
	lastRun.SetToCurrentTime()

	return prometheus.WriteToTextfile(path, reg)
}
