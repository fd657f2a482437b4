package cellar

import (
	"fmt"
	"strings"
)

// Edit corrects the descriptive fields of record id with those of w: wine
// information, acquisition facts, drinking window and rating.
//
// The fields driven by the lifecycle (status, quantities, consumption date, on
// order flag, parent and creation date) must be left as stored, Edit fails
// with ErrLifecycleField otherwise.
//
// The wine information of a cellar record is copied to its consumed children,
// so they keep matching their parent. A consumed child takes its wine
// information from the parent and cannot be edited on its own.
func Edit(tx *Tx, id ID, w Record) (Record, error) {
	r, err := tx.Get(id)
	if err != nil {
		return Record{}, err
	}
	if w.ID != 0 && w.ID != id {
		return Record{}, fmt.Errorf("cannot change the id of record %d to %d: %w", id, w.ID, ErrLifecycleField)
	}
	if fields := lifecycleChanges(r, w); len(fields) > 0 {
		return Record{}, fmt.Errorf("cannot edit %s of record %d: %w", strings.Join(fields, ", "), id, ErrLifecycleField)
	}
	if r.ParentID != 0 && wineInfo(w) != wineInfo(r) {
		return Record{}, fmt.Errorf("record %d is a consumption of record %d, edit the parent instead: %w", id, r.ParentID, ErrLifecycleField)
	}

	w.ID = id
	w.Name = strings.TrimSpace(w.Name)
	if err := tx.Put(w); err != nil {
		return Record{}, err
	}
	if wineInfo(w) == wineInfo(r) {
		return w, nil
	}
	for _, c := range tx.Children(id) {
		c.Name, c.Producer, c.Vintage, c.Type, c.Appellation = w.Name, w.Producer, w.Vintage, w.Type, w.Appellation
		c.Varietals, c.SizeML, c.AlcoholPct, c.Description = w.Varietals, w.SizeML, w.AlcoholPct, w.Description
		if err := tx.Put(c); err != nil {
			return Record{}, err
		}
	}
	return w, nil
}

// lifecycleChanges lists the lifecycle fields that differ between r and w.
func lifecycleChanges(r, w Record) []string {
	var fields []string
	if w.Status != r.Status {
		fields = append(fields, "status")
	}
	if w.Quantity != r.Quantity {
		fields = append(fields, "quantity")
	}
	if w.OriginalQuantity != r.OriginalQuantity {
		fields = append(fields, "original quantity")
	}
	if w.DateConsumed != r.DateConsumed {
		fields = append(fields, "consumption date")
	}
	if w.OnOrder != r.OnOrder {
		fields = append(fields, "on order")
	}
	if w.ParentID != r.ParentID {
		fields = append(fields, "parent")
	}
	if w.Added != r.Added {
		fields = append(fields, "creation date")
	}
	return fields
}

type wineFacts struct {
	name, producer, appellation, description string
	vintage, sizeML                          int
	wineType                                 WineType
	varietals                                [4]string
	alcohol                                  float64
}

func wineInfo(r Record) wineFacts {
	return wineFacts{
		name:        r.Name,
		producer:    r.Producer,
		appellation: r.Appellation,
		description: r.Description,
		vintage:     r.Vintage,
		sizeML:      r.SizeML,
		wineType:    r.Type,
		varietals:   r.Varietals,
		alcohol:     r.AlcoholPct,
	}
}
