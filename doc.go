// Package cellar keeps the inventory of a personal wine cellar and reconciles
// it against an external transaction ledger.
//
// The core functionalities include:
//   - Record Store: wishlist, cellar and consumed records, with consumed records
//     linked to the cellar record they were split from, and tasting notes.
//     Every change happens in a transaction checked against the inventory
//     invariants before it is committed.
//   - Lifecycle: acquisitions merge bottles into a record, consumptions split
//     the consumed bottles into a child record.
//   - Reconciliation: an idempotent batch repair of the records from the
//     scraped ledger of a cellar management site (acquisition backfill, orphan
//     linking, consumption backfill, reporting).
//   - Data Persistence: human readable JSONL files (see also the sqlite package).
//
// This package serves as the foundational logic for the `cellar` command-line
// tool.
package cellar
