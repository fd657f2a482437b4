package cellar

import (
	"errors"
	"testing"
	"time"
)

func TestConsume_Split(t *testing.T) {
	s := newTestStore(t, []Record{barolo(1)})

	var consumed Record
	update(t, s, func(tx *Tx) (err error) {
		consumed, err = Consume(tx, 1, Consumption{Date: day(2024, time.May, 1), Quantity: 1})
		return err
	})

	parent := get(t, s, 1)
	if parent.Quantity != 1 || parent.OriginalQuantity != 2 || parent.Status != Cellar {
		t.Errorf("parent = %+v, want 1 of 2 bottles in cellar", parent)
	}
	kids := children(t, s, 1)
	if len(kids) != 1 {
		t.Fatalf("got %d children, want 1", len(kids))
	}
	child := kids[0]
	if child.ID != consumed.ID {
		t.Errorf("Consume() returned record %d, want the child %d", consumed.ID, child.ID)
	}
	if child.Quantity != 1 || child.Status != Consumed || child.ParentID != 1 || child.DateConsumed != day(2024, time.May, 1) {
		t.Errorf("child = %+v, want 1 consumed bottle on 2024-05-01 with parent 1", child)
	}
	if child.Name != "Barolo" || child.Vintage != 2016 || child.SizeML != 750 {
		t.Errorf("child does not copy the wine fields: %+v", child)
	}
	checkBalance(t, s)
}

func TestConsume_Full(t *testing.T) {
	r := barolo(1)
	r.Quantity = 1
	r.OnOrder = true
	s := newTestStore(t, []Record{r})

	update(t, s, func(tx *Tx) error {
		_, err := Consume(tx, 1, Consumption{Quantity: 1, Rating: 92})
		return err
	})

	got := get(t, s, 1)
	if got.Status != Consumed || got.Quantity != 1 || got.Rating != 92 || got.OnOrder {
		t.Errorf("record = %+v, want consumed in place with rating 92", got)
	}
	if got.DateConsumed != testToday {
		t.Errorf("DateConsumed = %v, want today %v", got.DateConsumed, testToday)
	}
	if kids := children(t, s, 1); len(kids) != 0 {
		t.Errorf("full consumption created %d children", len(kids))
	}
}

func TestConsume_Clamp(t *testing.T) {
	s := newTestStore(t, []Record{barolo(1)})
	update(t, s, func(tx *Tx) error {
		_, err := Consume(tx, 1, Consumption{Quantity: 5})
		return err
	})
	if got := get(t, s, 1); got.Status != Consumed || got.Quantity != 2 {
		t.Errorf("record = %+v, want both bottles consumed in place", got)
	}
}

func TestConsume_OverridesAndNoteGoToChild(t *testing.T) {
	r := barolo(1)
	r.Rating, r.DrinkFrom, r.DrinkTo = 90, 2020, 2030
	s := newTestStore(t, []Record{r})

	update(t, s, func(tx *Tx) error {
		_, err := Consume(tx, 1, Consumption{
			Date:      day(2024, time.May, 1),
			Quantity:  1,
			Rating:    95,
			DrinkFrom: 2024,
			DrinkTo:   2040,
			Note:      &Note{Nose: "tar and roses"},
		})
		return err
	})

	parent := get(t, s, 1)
	if parent.Rating != 90 || parent.DrinkFrom != 2020 || parent.DrinkTo != 2030 {
		t.Errorf("overrides leaked to the parent: %+v", parent)
	}
	child := children(t, s, 1)[0]
	if child.Rating != 95 || child.DrinkFrom != 2024 || child.DrinkTo != 2040 {
		t.Errorf("child = %+v, want the overrides", child)
	}

	_ = s.View(func(tx *Tx) error {
		if n := tx.Notes(1); len(n) != 0 {
			t.Errorf("parent got %d notes", len(n))
		}
		notes := tx.Notes(child.ID)
		if len(notes) != 1 {
			t.Fatalf("child got %d notes, want 1", len(notes))
		}
		if notes[0].Nose != "tar and roses" || notes[0].Date != day(2024, time.May, 1) {
			t.Errorf("note = %+v, want nose and consumption date", notes[0])
		}
		return nil
	})
}

func TestConsume_EmptyNoteIsIgnored(t *testing.T) {
	s := newTestStore(t, []Record{barolo(1)})
	update(t, s, func(tx *Tx) error {
		_, err := Consume(tx, 1, Consumption{Quantity: 1, Note: &Note{Overall: "  "}})
		return err
	})
	records, notes := s.Snapshot()
	if len(records) != 2 || len(notes) != 0 {
		t.Errorf("got %d records and %d notes, want 2 and 0", len(records), len(notes))
	}
}

func TestConsume_Errors(t *testing.T) {
	consumed := barolo(2)
	consumed.Status = Consumed
	wish := Record{ID: 3, Name: "Yquem", Status: Wishlist}

	tests := []struct {
		name string
		id   ID
		c    Consumption
		want error
	}{
		{name: "unknown record", id: 9, c: Consumption{Quantity: 1}, want: ErrNotFound},
		{name: "already consumed", id: 2, c: Consumption{Quantity: 1}, want: ErrNotInCellar},
		{name: "wishlist", id: 3, c: Consumption{Quantity: 1}, want: ErrNotInCellar},
		{name: "zero quantity", id: 1, c: Consumption{Quantity: 0}},
		{name: "bad rating", id: 1, c: Consumption{Quantity: 1, Rating: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, []Record{barolo(1), consumed, wish})
			before, _ := s.Snapshot()
			err := s.Update(func(tx *Tx) error {
				_, err := Consume(tx, tt.id, tt.c)
				return err
			})
			if err == nil {
				t.Fatal("Consume() succeeded, want an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Consume() error = %v, want %v", err, tt.want)
			}
			if after, _ := s.Snapshot(); len(after) != len(before) {
				t.Errorf("failed consumption changed the store")
			}
		})
	}
}

func TestAcquire_New(t *testing.T) {
	s := newTestStore(t, nil)
	var got Record
	update(t, s, func(tx *Tx) (err error) {
		got, err = Acquire(tx, 0, Acquisition{
			Wine:     Record{Name: "Barolo", Vintage: 2016},
			Date:     day(2023, time.March, 2),
			Quantity: 6,
			Price:    USD(45),
			From:     "Wine.com",
		})
		return err
	})
	if got.ID != 1 || got.Status != Cellar || got.Quantity != 6 || got.OriginalQuantity != 6 {
		t.Errorf("Acquire() = %+v, want 6 bottles in cellar", got)
	}
	if got.SizeML != DefaultSizeML || got.Type != Red || got.Added != testToday {
		t.Errorf("Acquire() defaults = %+v", got)
	}
	if !got.AcqPrice.Equal(USD(45)) || got.From != "Wine.com" || got.AcqDate != day(2023, time.March, 2) {
		t.Errorf("Acquire() acquisition facts = %+v", got)
	}
}

func TestAcquire_MergeDoubles(t *testing.T) {
	s := newTestStore(t, []Record{barolo(1)})
	a := Acquisition{Quantity: 2, From: "Cellar door"}
	for range 2 {
		update(t, s, func(tx *Tx) error {
			_, err := Acquire(tx, 1, a)
			return err
		})
	}
	got := get(t, s, 1)
	if got.Quantity != 6 || got.OriginalQuantity != 6 {
		t.Errorf("after two merges got %d of %d bottles, want 6 of 6", got.Quantity, got.OriginalQuantity)
	}
}

func TestAcquire_KeepsKnownFacts(t *testing.T) {
	r := barolo(1)
	r.From, r.Stored, r.Description, r.AlcoholPct = "Wine.com", "rack A", "classic", 14.5
	r.Price = USD(45)
	s := newTestStore(t, []Record{r})
	update(t, s, func(tx *Tx) error {
		_, err := Acquire(tx, 1, Acquisition{Quantity: 1, Stored: "rack B", Description: " "})
		return err
	})
	got := get(t, s, 1)
	if got.From != "Wine.com" || got.Description != "classic" || got.AlcoholPct != 14.5 || !got.Price.Equal(USD(45)) {
		t.Errorf("empty acquisition facts blanked known ones: %+v", got)
	}
	if got.Stored != "rack B" {
		t.Errorf("Stored = %q, want overwritten", got.Stored)
	}
}

func TestAcquire_Wishlist(t *testing.T) {
	s := newTestStore(t, nil)
	var wish Record
	update(t, s, func(tx *Tx) (err error) {
		wish, err = Acquire(tx, 0, Acquisition{Wine: Record{Name: "Yquem", Vintage: 2001}, Wishlist: true})
		return err
	})
	if wish.Status != Wishlist || wish.Quantity != 0 {
		t.Fatalf("wishlist record = %+v", wish)
	}
	update(t, s, func(tx *Tx) error {
		_, err := Acquire(tx, wish.ID, Acquisition{Quantity: 1, OnOrder: true})
		return err
	})
	got := get(t, s, wish.ID)
	if got.Status != Cellar || got.Quantity != 1 || got.OriginalQuantity != 1 || !got.OnOrder {
		t.Errorf("acquired wishlist record = %+v, want 1 bottle on order in cellar", got)
	}
}

func TestAcquire_MergeSetsOnOrder(t *testing.T) {
	s := newTestStore(t, []Record{barolo(1)})
	for _, onOrder := range []bool{true, false} {
		update(t, s, func(tx *Tx) error {
			_, err := Acquire(tx, 1, Acquisition{Quantity: 1, OnOrder: onOrder})
			return err
		})
		if got := get(t, s, 1); got.OnOrder != onOrder || got.Status != Cellar {
			t.Errorf("after merge with OnOrder=%v got OnOrder=%v, status %s", onOrder, got.OnOrder, got.Status)
		}
	}
}

func TestAcquire_ConsumedRecordComesBack(t *testing.T) {
	s := newTestStore(t, []Record{barolo(1)})
	update(t, s, func(tx *Tx) error {
		if _, err := Consume(tx, 1, Consumption{Date: day(2024, time.May, 1), Quantity: 1}); err != nil {
			return err
		}
		_, err := Consume(tx, 1, Consumption{Date: day(2024, time.June, 1), Quantity: 1, Note: &Note{Overall: "last one"}})
		return err
	})
	if got := get(t, s, 1); got.Status != Consumed {
		t.Fatalf("record should be consumed, got %s", got.Status)
	}

	update(t, s, func(tx *Tx) error {
		_, err := Acquire(tx, 1, Acquisition{Quantity: 3})
		return err
	})

	got := get(t, s, 1)
	if got.Status != Cellar || got.Quantity != 3 || got.OriginalQuantity != 5 || !got.DateConsumed.IsZero() {
		t.Errorf("record = %+v, want 3 of 5 bottles back in cellar", got)
	}
	kids := children(t, s, 1)
	if len(kids) != 2 {
		t.Fatalf("got %d children, want 2", len(kids))
	}
	last := kids[1]
	if last.Quantity != 1 || last.DateConsumed != day(2024, time.June, 1) {
		t.Errorf("consumed bottle history = %+v", last)
	}
	_ = s.View(func(tx *Tx) error {
		if notes := tx.Notes(last.ID); len(notes) != 1 {
			t.Errorf("note did not follow the consumed bottle")
		}
		return nil
	})
	checkBalance(t, s)
}

func TestAcquire_ConsumedChildIsRejected(t *testing.T) {
	child := barolo(2)
	child.Status, child.Quantity, child.ParentID = Consumed, 1, 1
	parent := barolo(1)
	parent.Quantity = 1
	s := newTestStore(t, []Record{parent, child})
	err := s.Update(func(tx *Tx) error {
		_, err := Acquire(tx, 2, Acquisition{Quantity: 1})
		return err
	})
	if !errors.Is(err, ErrNotInCellar) {
		t.Errorf("Acquire() on a consumed child error = %v, want ErrNotInCellar", err)
	}
}

// TestBalancePreserved runs a sequence of lifecycle operations and checks the
// cellar balance after each of them.
func TestBalancePreserved(t *testing.T) {
	type step struct {
		acquire int // bottles to acquire, or
		consume int // bottles to consume
	}
	steps := []step{
		{acquire: 3}, {consume: 1}, {acquire: 2}, {consume: 2},
		{consume: 1}, {acquire: 1}, {consume: 2}, {acquire: 4}, {consume: 1},
	}
	s := newTestStore(t, nil)
	update(t, s, func(tx *Tx) error {
		_, err := Acquire(tx, 0, Acquisition{Wine: Record{Name: "Chianti"}, Quantity: 1})
		return err
	})
	for i, st := range steps {
		err := s.Update(func(tx *Tx) error {
			if st.acquire > 0 {
				_, err := Acquire(tx, 1, Acquisition{Quantity: st.acquire})
				return err
			}
			_, err := Consume(tx, 1, Consumption{Quantity: st.consume, Date: day(2024, time.January, i+1)})
			return err
		})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		checkBalance(t, s)
	}
}
