package cellar

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Report summarizes a reconciliation run.
type Report struct {
	Entries   int      // external entries read
	Malformed int      // entries skipped because they could not be parsed
	Matched   int      // entries resolved to a cellar record
	Updated   int      // cellar records changed by the acquisition backfill
	Rejected  int      // matched entries left unapplied because the cellar record is or would become invalid
	Unmatched []string // names of the entries matching no cellar record

	Linked int // consumed records attached to their cellar parent

	Created        int // consumed records synthesized from consumption events
	Backfilled     int // consumed records that received their consumption date
	Satisfied      int // parents whose consumed children already cover the ledger
	UnplacedEvents int // consumption events that could not be placed

	Orphans    []ID // consumed records still lacking a cellar parent
	Unbalanced []ID // cellar records whose counts do not add up
}

// Mutations is the number of records changed by the run. Re-running the same
// ledger on the result returns a report with no mutation.
func (r Report) Mutations() int {
	return r.Updated + r.Linked + r.Created + r.Backfilled
}

// Reconciler repairs the cellar from the external ledger.
type Reconciler struct {
	Log      logrus.FieldLogger
	Currency string // currency of the ledger prices, when the record has none
}

func (rc Reconciler) logger() logrus.FieldLogger {
	if rc.Log == nil {
		return logrus.StandardLogger()
	}
	return rc.Log
}

// Reconcile runs the acquisition backfill, the orphan linking and the
// consumption backfill in a single store transaction, then reports.
//
// Unmatched or malformed entries are counted and skipped, they never abort the
// run. Reconciliation never deletes records.
func (rc Reconciler) Reconcile(s *Store, entries []ExternalEntry) (Report, error) {
	rep := Report{Entries: len(entries)}
	err := s.Repair(func(tx *Tx) error {
		parents, err := rc.backfillAcquisitions(tx, entries, &rep)
		if err != nil {
			return err
		}
		if err := rc.linkOrphans(tx, &rep); err != nil {
			return err
		}
		if err := rc.backfillConsumptions(tx, entries, parents, &rep); err != nil {
			return err
		}
		rep.Orphans = orphans(tx)
		rep.Unbalanced = tx.Unbalanced()
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("reconciliation aborted: %w", err)
	}
	rc.logger().WithFields(logrus.Fields{
		"matched":   rep.Matched,
		"unmatched": len(rep.Unmatched),
		"linked":    rep.Linked,
		"created":   rep.Created,
		"orphans":   len(rep.Orphans),
	}).Info("reconciliation done")
	return rep, nil
}

// index is a pass scoped lookup of cellar records by matching key.
type index struct {
	byKey   map[Key][]Record // ascending id
	vintage map[int][]Record // ascending id, for prefix matching
}

// newIndex indexes the cellar records that are not on order.
func newIndex(tx *Tx) index {
	idx := index{byKey: make(map[Key][]Record), vintage: make(map[int][]Record)}
	for _, r := range tx.Select(Cellar) {
		if r.OnOrder {
			continue
		}
		k := r.Key()
		idx.byKey[k] = append(idx.byKey[k], r)
		idx.vintage[k.Vintage] = append(idx.vintage[k.Vintage], r)
	}
	return idx
}

// exact returns the record with this key. Among duplicates the one with the
// same bottle size wins, else the first one.
func (idx index) exact(k Key, sizeML int) (Record, bool) {
	list := idx.byKey[k]
	if len(list) == 0 {
		return Record{}, false
	}
	if sizeML != 0 {
		for _, r := range list {
			if r.SizeML == sizeML {
				return r, true
			}
		}
	}
	return list[0], true
}

// resolve tries an exact match then falls back to the first record of the same
// vintage whose name prefixes the external name.
func (idx index) resolve(k Key, sizeML int) (Record, bool) {
	if r, ok := idx.exact(k, sizeML); ok {
		return r, true
	}
	for _, r := range idx.vintage[k.Vintage] {
		if prefixMatch(k.Name, NormalizeName(r.Name)) {
			return r, true
		}
	}
	return Record{}, false
}

// entryKey parses the external name.
func entryKey(e ExternalEntry) (Key, int) {
	vintage, name, size := ParseWineName(e.Name)
	return Key{Vintage: vintage, Name: NormalizeName(name)}, size
}

// backfillAcquisitions resolves every entry to a cellar record and updates its
// acquisition facts and counts. It returns the resolved parent of each entry.
//
// A record is claimed by at most one entry. Exact matches claim first, then
// prefix matches in entry order. An entry whose record is already claimed is
// unmatched.
func (rc Reconciler) backfillAcquisitions(tx *Tx, entries []ExternalEntry, rep *Report) (map[int]ID, error) {
	log := rc.logger().WithField("pass", "acquisitions")
	idx := newIndex(tx)
	parents := make(map[int]ID)
	claimed := make(map[ID]int) // record id to entry index

	type target struct {
		key  Key
		size int
	}
	targets := make(map[int]target)
	for i, e := range entries {
		elog := log.WithField("entry", e.Name)
		if e.Err != nil {
			rep.Malformed++
			elog.WithError(e.Err).Warn("skipping malformed entry")
			continue
		}
		if e.Acquired > 0 && e.InCellar > e.Acquired {
			rep.Malformed++
			elog.WithError(ErrMalformedEntry).Warnf("%d bottles in cellar out of %d acquired", e.InCellar, e.Acquired)
			continue
		}
		k, size := entryKey(e)
		if k.Name == "" {
			rep.Malformed++
			elog.WithError(ErrMalformedEntry).Warn("entry has no wine name")
			continue
		}
		targets[i] = target{k, size}
		if r, ok := idx.exact(k, size); ok {
			if _, taken := claimed[r.ID]; !taken {
				claimed[r.ID] = i
			}
		}
	}

	for i, e := range entries {
		t, ok := targets[i]
		if !ok {
			continue
		}
		elog := log.WithField("entry", e.Name)
		r, ok := idx.resolve(t.key, t.size)
		if !ok {
			rep.Unmatched = append(rep.Unmatched, e.Name)
			elog.WithError(ErrUnresolvedMatch).Info("entry not found in cellar")
			continue
		}
		if j, taken := claimed[r.ID]; taken && j != i {
			rep.Unmatched = append(rep.Unmatched, e.Name)
			elog.WithError(ErrUnresolvedMatch).WithField("wine", r.ID).Warnf("wine already matched by %q", entries[j].Name)
			continue
		}
		claimed[r.ID] = i
		rep.Matched++
		elog = elog.WithField("wine", r.ID)

		r, _ = tx.Record(r.ID)
		if err := r.Validate(); err != nil {
			rep.Rejected++
			elog.WithError(err).Warn("matched record is invalid, entry skipped")
			continue
		}
		updated, changed := rc.applyEntry(r, e)
		if updated.Quantity > updated.OriginalQuantity {
			rep.Rejected++
			elog.Warnf("ledger would leave %d bottles held out of %d acquired, record left unchanged", updated.Quantity, updated.OriginalQuantity)
			continue
		}
		if changed {
			if err := tx.Put(updated); err != nil {
				rep.Rejected++
				elog.WithError(err).Warn("ledger facts rejected, record left unchanged")
				continue
			}
			rep.Updated++
			elog.Debug("acquisition backfilled")
		}
		parents[i] = r.ID
	}
	return parents, nil
}

// applyEntry copies the ledger acquisition facts and counters onto r.
func (rc Reconciler) applyEntry(r Record, e ExternalEntry) (Record, bool) {
	changed := false
	if evt, ok := e.earliestAcquisition(); ok {
		if !evt.Date.IsZero() && evt.Date != r.AcqDate {
			r.AcqDate = evt.Date
			changed = true
		}
		if !evt.Price.IsZero() {
			cur := r.AcqPrice.Currency()
			if cur == "" {
				cur = r.Price.Currency()
			}
			if cur == "" {
				cur = rc.Currency
			}
			if p := M(evt.Price, cur); !p.Equal(r.AcqPrice) {
				r.AcqPrice = p
				changed = true
			}
			if r.Price.IsZero() {
				r.Price = r.AcqPrice
				changed = true
			}
		}
		if evt.From != "" && evt.From != r.From {
			r.From = evt.From
			changed = true
		}
	}
	if e.Acquired > 0 && e.Acquired != r.OriginalQuantity {
		r.OriginalQuantity = e.Acquired
		changed = true
	}
	if e.InCellar > 0 && e.InCellar != r.Quantity {
		r.Quantity = e.InCellar
		changed = true
	}
	return r, changed
}

// linkOrphans attaches consumed records without a parent to the cellar record
// with the same key. Nothing but the parent link changes.
func (rc Reconciler) linkOrphans(tx *Tx, rep *Report) error {
	log := rc.logger().WithField("pass", "orphans")
	idx := newIndex(tx)
	for _, r := range tx.Select(Consumed) {
		if r.ParentID != 0 || len(tx.state.children[r.ID]) > 0 {
			continue
		}
		parent, ok := idx.exact(r.Key(), r.SizeML)
		if !ok || parent.Validate() != nil {
			continue
		}
		r.ParentID = parent.ID
		if err := tx.Put(r); err != nil {
			log.WithField("wine", r.ID).WithError(err).Warn("consumed record left unlinked")
			continue
		}
		rep.Linked++
		log.WithFields(logrus.Fields{"wine": r.ID, "parent": parent.ID}).Debug("linked consumed record")
	}
	return nil
}

// backfillConsumptions makes sure every consumption event of the ledger is
// represented by a consumed child of the entry's parent.
//
// An event is represented by an unused child consumed the same day, or else by
// an unused undated child of the same quantity, which then gets the date. When
// neither exists, and the children still account for fewer bottles than the
// ledger says were consumed, a child is synthesized.
func (rc Reconciler) backfillConsumptions(tx *Tx, entries []ExternalEntry, parents map[int]ID, rep *Report) error {
	log := rc.logger().WithField("pass", "consumptions")
	for i, e := range entries {
		pid, ok := parents[i]
		if !ok || len(e.Consumptions) == 0 {
			continue
		}
		elog := log.WithFields(logrus.Fields{"entry": e.Name, "wine": pid})
		parent, ok := tx.Record(pid)
		if !ok {
			continue
		}

		var children []Record
		existing := 0
		for _, c := range tx.Children(pid) {
			if c.Status == Consumed {
				children = append(children, c)
				existing += c.Quantity
			}
		}
		if existing >= e.Consumed {
			rep.Satisfied++
			continue
		}

		used := make(map[ID]bool)
		find := func(match func(Record) bool) (int, bool) {
			for j, c := range children {
				if !used[c.ID] && match(c) {
					return j, true
				}
			}
			return 0, false
		}

	events:
		for _, evt := range e.Consumptions {
			if !evt.Date.IsZero() {
				if j, ok := find(func(c Record) bool { return c.DateConsumed == evt.Date }); ok {
					used[children[j].ID] = true
					continue
				}
			}
			if j, ok := find(func(c Record) bool { return c.DateConsumed.IsZero() && c.Quantity == evt.Quantity }); ok {
				c := children[j]
				used[c.ID] = true
				if evt.Date.IsZero() {
					continue
				}
				c.DateConsumed = evt.Date
				if err := tx.Put(c); err != nil {
					elog.WithField("child", c.ID).WithError(err).Warn("consumption date not set, remaining events skipped")
					break events
				}
				children[j] = c
				rep.Backfilled++
				elog.WithField("child", c.ID).Debugf("consumption date set to %s", evt.Date)
				continue
			}
			if existing < e.Consumed {
				c, err := tx.Create(parent.offspring(evt.Quantity, evt.Date))
				if err != nil {
					elog.WithError(err).Warn("consumption not synthesized, remaining events skipped")
					break events
				}
				children = append(children, c)
				used[c.ID] = true
				existing += c.Quantity
				rep.Created++
				elog.WithField("child", c.ID).Debugf("synthesized consumption of %d on %q", evt.Quantity, evt.Date)
				continue
			}
			rep.UnplacedEvents++
			elog.Warnf("consumption of %d on %q cannot be placed, %d of %d bottles already accounted for", evt.Quantity, evt.Date, existing, e.Consumed)
		}
		if existing != e.Consumed {
			elog.Warnf("consumed children account for %d bottles, ledger says %d", existing, e.Consumed)
		}
	}
	return nil
}

// orphans lists the consumed records that have neither a parent nor children.
func orphans(tx *Tx) []ID {
	var ids []ID
	for _, r := range tx.Select(Consumed) {
		if r.ParentID == 0 && len(tx.state.children[r.ID]) == 0 {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// String formats the report as a one line summary.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d entries: %d matched, %d unmatched", r.Entries, r.Matched, len(r.Unmatched))
	if r.Malformed > 0 {
		fmt.Fprintf(&b, ", %d malformed", r.Malformed)
	}
	fmt.Fprintf(&b, "; %d updated, %d linked, %d created, %d backfilled", r.Updated, r.Linked, r.Created, r.Backfilled)
	if len(r.Orphans) > 0 {
		fmt.Fprintf(&b, "; %d orphans", len(r.Orphans))
	}
	return b.String()
}
