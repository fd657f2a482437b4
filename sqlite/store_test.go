package sqlite

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/etnz/cellar"
	"github.com/etnz/cellar/date"
)

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cellar.db")
	db, err := Open(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s := cellar.NewStore()
	s.Today = func() date.Date { return date.New(2024, 1, 1) }
	err = s.Update(func(tx *cellar.Tx) error {
		r, err := cellar.Acquire(tx, 0, cellar.Acquisition{
			Wine:     cellar.Record{Name: "Barolo", Vintage: 2016},
			Quantity: 2,
			Price:    cellar.M(45, "USD"),
		})
		if err != nil {
			return err
		}
		_, err = cellar.Consume(tx, r.ID, cellar.Consumption{
			Date:     date.New(2024, 5, 1),
			Quantity: 1,
			Note:     &cellar.Note{Nose: "tar and roses", Score: 93},
		})
		return err
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if err := db.Save(s); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	// saving twice replaces the snapshot.
	if err := db.Save(s); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	wantRecords, wantNotes := s.Snapshot()
	gotRecords, gotNotes := got.Snapshot()
	if len(gotRecords) != 2 || len(gotNotes) != 1 {
		t.Fatalf("reloaded %d records and %d notes, want 2 and 1", len(gotRecords), len(gotNotes))
	}
	for i := range wantRecords {
		w, g := wantRecords[i], gotRecords[i]
		if g.ID != w.ID || g.ParentID != w.ParentID || g.Quantity != w.Quantity || g.OriginalQuantity != w.OriginalQuantity || g.Status != w.Status || g.DateConsumed != w.DateConsumed {
			t.Errorf("record %d: got %+v, want %+v", i, g, w)
		}
		if !g.Price.Equal(w.Price) {
			t.Errorf("record %d: price %v, want %v", i, g.Price, w.Price)
		}
	}
	if !reflect.DeepEqual(gotNotes, wantNotes) {
		t.Errorf("notes = %+v, want %+v", gotNotes, wantNotes)
	}
}

func TestLoadEmpty(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s, err := db.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if records, notes := s.Snapshot(); len(records) != 0 || len(notes) != 0 {
		t.Errorf("empty database loaded %d records and %d notes", len(records), len(notes))
	}
}
