package cellar

import (
	"testing"
	"time"

	"github.com/etnz/cellar/date"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// day is a short date constructor.
func day(y int, m time.Month, d int) date.Date { return date.New(y, m, d) }

// testToday is the date of every test transaction.
var testToday = day(2025, time.January, 15)

// newTestStore returns a store pre-loaded with records and notes, dated testToday.
func newTestStore(t *testing.T, records []Record, notes ...Note) *Store {
	t.Helper()
	s, err := NewStoreFrom(records, notes)
	if err != nil {
		t.Fatalf("NewStoreFrom() error = %v", err)
	}
	s.Today = func() date.Date { return testToday }
	return s
}

// update runs fn in a transaction and fails the test on error.
func update(t *testing.T, s *Store, fn func(tx *Tx) error) {
	t.Helper()
	if err := s.Update(fn); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

// get returns a record from the store, failing the test if it does not exist.
func get(t *testing.T, s *Store, id ID) (r Record) {
	t.Helper()
	err := s.View(func(tx *Tx) (err error) {
		r, err = tx.Get(id)
		return err
	})
	if err != nil {
		t.Fatalf("cannot get record %d: %v", id, err)
	}
	return r
}

// children returns the children of a record.
func children(t *testing.T, s *Store, id ID) (list []Record) {
	t.Helper()
	_ = s.View(func(tx *Tx) error {
		list = tx.Children(id)
		return nil
	})
	return list
}

// checkBalance fails if a cellar record with children does not satisfy
// original quantity = quantity + consumed children.
func checkBalance(t *testing.T, s *Store) {
	t.Helper()
	_ = s.View(func(tx *Tx) error {
		for _, r := range tx.Select(Cellar) {
			kids := tx.Children(r.ID)
			if len(kids) == 0 {
				continue
			}
			sum := 0
			for _, c := range kids {
				sum += c.Quantity
			}
			if r.OriginalQuantity != r.Quantity+sum {
				t.Errorf("record %d: original quantity %d != quantity %d + children %d", r.ID, r.OriginalQuantity, r.Quantity, sum)
			}
		}
		return nil
	})
}

// barolo is a cellar record of two bottles.
func barolo(id ID) Record {
	return Record{ID: id, Name: "Barolo", Vintage: 2016, Type: Red, SizeML: 750, Status: Cellar, Quantity: 2, OriginalQuantity: 2}
}
