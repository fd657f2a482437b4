package cellar

import (
	"testing"
	"time"
)

func TestReassociate(t *testing.T) {
	parent := barolo(1)
	parent.Quantity, parent.OriginalQuantity = 1, 4
	older := barolo(2)
	older.Status, older.Quantity, older.ParentID, older.DateConsumed = Consumed, 1, 1, day(2023, time.January, 1)
	latest := barolo(3)
	latest.Status, latest.Quantity, latest.ParentID, latest.DateConsumed = Consumed, 1, 1, day(2024, time.May, 1)
	undated := barolo(4)
	undated.Status, undated.Quantity, undated.ParentID = Consumed, 1, 1
	lonely := Record{ID: 5, Name: "Chianti", Status: Cellar, Quantity: 1, OriginalQuantity: 1}

	s := newTestStore(t, []Record{parent, older, latest, undated, lonely},
		Note{ID: 10, Wine: 1, Date: day(2020, time.March, 1), Nose: "cherry"},
		Note{ID: 11, Wine: 1, Palate: "firm"},
		Note{ID: 12, Wine: 5, Overall: "stays"},
		Note{ID: 13, Wine: 2, Overall: "already there"},
	)

	var moved int
	update(t, s, func(tx *Tx) (err error) {
		moved, err = Reassociate(tx)
		return err
	})
	if moved != 2 {
		t.Errorf("Reassociate() moved %d notes, want 2", moved)
	}

	_, notes := s.Snapshot()
	want := map[ID]struct {
		wine ID
		date string
	}{
		10: {3, "2024-05-01"},
		11: {3, "2024-05-01"},
		12: {5, ""},
		13: {2, ""},
	}
	for _, n := range notes {
		w := want[n.ID]
		if n.Wine != w.wine || n.Date.String() != w.date {
			t.Errorf("note %d on record %d dated %q, want record %d dated %q", n.ID, n.Wine, n.Date, w.wine, w.date)
		}
	}

	// a second run has nothing left to move.
	update(t, s, func(tx *Tx) (err error) {
		moved, err = Reassociate(tx)
		return err
	})
	if moved != 0 {
		t.Errorf("second Reassociate() moved %d notes", moved)
	}
}

func TestReassociate_TieGoesToHigherID(t *testing.T) {
	parent := barolo(1)
	parent.Quantity, parent.OriginalQuantity = 0, 2
	a := barolo(2)
	a.Status, a.Quantity, a.ParentID, a.DateConsumed = Consumed, 1, 1, day(2024, time.May, 1)
	b := barolo(3)
	b.Status, b.Quantity, b.ParentID, b.DateConsumed = Consumed, 1, 1, day(2024, time.May, 1)
	s := newTestStore(t, []Record{parent, a, b}, Note{ID: 4, Wine: 1, Overall: "lovely"})

	update(t, s, func(tx *Tx) error {
		_, err := Reassociate(tx)
		return err
	})
	if _, notes := s.Snapshot(); notes[0].Wine != 3 {
		t.Errorf("note moved to %d, want 3", notes[0].Wine)
	}
}
