package cellar

import (
	"errors"
	"fmt"
	"slices"
)

// check verifies the invariants of every record touched by the transaction, and
// of the parents of touched children. It returns all violations joined.
func (tx *Tx) check(balanced bool) error {
	ids := make(map[ID]bool)
	for id := range tx.touched {
		if n, ok := tx.state.notes[id]; ok {
			if _, exists := tx.state.records[n.Wine]; !exists {
				return &InvariantError{Rule: RuleReference, Record: n.Wine, Detail: fmt.Sprintf("note %d has no owner", id)}
			}
			continue
		}
		ids[id] = true
		if r, ok := tx.state.records[id]; ok && r.ParentID != 0 {
			ids[r.ParentID] = true
		}
		if r, ok := tx.before.records[id]; ok && r.ParentID != 0 {
			ids[r.ParentID] = true
		}
	}

	var errs []error
	sorted := make([]ID, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	slices.Sort(sorted)
	for _, id := range sorted {
		if err := tx.checkRecord(id, balanced); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (tx *Tx) checkRecord(id ID, balanced bool) error {
	r, ok := tx.state.records[id]
	if !ok {
		// deleted records have nothing left to check, but must not leave children behind.
		if len(tx.state.children[id]) > 0 {
			return &InvariantError{Rule: RuleReference, Record: id, Detail: "deleted record still has children"}
		}
		return nil
	}
	violation := func(rule, format string, args ...any) error {
		return &InvariantError{Rule: rule, Record: id, Detail: fmt.Sprintf(format, args...)}
	}

	if err := r.Validate(); err != nil {
		return violation(RuleRecord, "%v", err)
	}
	if r.Status == Consumed && r.OnOrder {
		return violation(RuleOnOrder, "consumed record is marked on order")
	}
	if r.Status == Cellar && r.Quantity > r.OriginalQuantity {
		return violation(RuleQuantity, "holds %d bottles but only %d were acquired", r.Quantity, r.OriginalQuantity)
	}
	if old, existed := tx.before.records[id]; existed && old.Status == Consumed && r.Status == Consumed && old.Quantity != r.Quantity {
		return violation(RuleConsumedQuantity, "consumed quantity changed from %d to %d", old.Quantity, r.Quantity)
	}
	if r.ParentID != 0 {
		parent, exists := tx.state.records[r.ParentID]
		switch {
		case !exists:
			return violation(RuleReference, "parent %d does not exist", r.ParentID)
		case r.Status != Consumed:
			return violation(RuleReference, "only consumed records can have a parent, status is %s", r.Status)
		case parent.ParentID != 0:
			return violation(RuleReference, "parent %d is itself a consumed child", r.ParentID)
		}
	}

	if !balanced || r.Status != Cellar || len(tx.state.children[id]) == 0 {
		return nil
	}
	// A record that was already out of balance before the transaction (legacy
	// or partially reconciled data) may stay so, but must not drift further.
	want := 0
	if old, existed := tx.before.records[id]; existed && old.Status == Cellar {
		want = tx.before.imbalance(id)
	}
	if got := tx.state.imbalance(id); got != want {
		return violation(RuleBalance, "acquired %d, held %d, consumed children %d",
			r.OriginalQuantity, r.Quantity, tx.state.consumedChildren(id))
	}
	return nil
}

// Unbalanced returns the cellar records with children whose acquired quantity
// differs from the bottles held plus the bottles consumed by their children.
func (tx *Tx) Unbalanced() []ID {
	var ids []ID
	for _, r := range tx.Select(Cellar) {
		if len(tx.state.children[r.ID]) > 0 && tx.state.imbalance(r.ID) != 0 {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
