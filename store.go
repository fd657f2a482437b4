package cellar

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/etnz/cellar/date"
)

// state is the full content of a cellar: records, notes and the parent to
// children reverse index.
type state struct {
	records  map[ID]Record
	notes    map[ID]Note
	children map[ID][]ID // parent id -> child ids, ascending
	lastID   ID
}

func newState() state {
	return state{
		records:  make(map[ID]Record),
		notes:    make(map[ID]Note),
		children: make(map[ID][]ID),
	}
}

func (s state) clone() state {
	c := state{
		records:  maps.Clone(s.records),
		notes:    maps.Clone(s.notes),
		children: make(map[ID][]ID, len(s.children)),
		lastID:   s.lastID,
	}
	for k, v := range s.children {
		c.children[k] = slices.Clone(v)
	}
	return c
}

func (s *state) nextID() ID {
	s.lastID++
	return s.lastID
}

func (s *state) link(parent, child ID) {
	if parent == 0 {
		return
	}
	ids := s.children[parent]
	i, found := slices.BinarySearch(ids, child)
	if !found {
		s.children[parent] = slices.Insert(ids, i, child)
	}
}

func (s *state) unlink(parent, child ID) {
	if parent == 0 {
		return
	}
	ids := slices.DeleteFunc(s.children[parent], func(id ID) bool { return id == child })
	if len(ids) == 0 {
		delete(s.children, parent)
		return
	}
	s.children[parent] = ids
}

// consumedChildren sums the quantity of the consumed children of a record.
func (s state) consumedChildren(parent ID) (n int) {
	for _, id := range s.children[parent] {
		if c := s.records[id]; c.Status == Consumed {
			n += c.Quantity
		}
	}
	return n
}

// imbalance is how far a record is from "acquired = held + consumed children".
func (s state) imbalance(id ID) int {
	r := s.records[id]
	return r.OriginalQuantity - r.Quantity - s.consumedChildren(id)
}

// Store holds one owner's cellar in memory.
//
// All access goes through transactions. A transaction works on a copy of the
// state and is committed as a whole, or not at all, so a store is never left
// half updated. The store assumes a single writer: transactions are serialized.
type Store struct {
	mu    sync.Mutex
	state state
	// Today returns the date used to stamp new records. Tests may override it.
	Today func() date.Date
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newState(), Today: date.Today}
}

// NewStoreFrom creates a store from previously persisted records and notes.
func NewStoreFrom(records []Record, notes []Note) (*Store, error) {
	st := newState()
	for _, r := range records {
		if r.ID <= 0 {
			return nil, fmt.Errorf("record %q has no id", r.Name)
		}
		if _, exists := st.records[r.ID]; exists {
			return nil, fmt.Errorf("duplicate record id %d", r.ID)
		}
		st.records[r.ID] = r
		st.lastID = max(st.lastID, r.ID)
	}
	for _, r := range records {
		if r.ParentID == 0 {
			continue
		}
		if _, exists := st.records[r.ParentID]; !exists {
			return nil, fmt.Errorf("record %d refers to unknown parent %d", r.ID, r.ParentID)
		}
		st.link(r.ParentID, r.ID)
	}
	for _, n := range notes {
		if n.ID <= 0 {
			return nil, fmt.Errorf("note on record %d has no id", n.Wine)
		}
		if _, exists := st.notes[n.ID]; exists {
			return nil, fmt.Errorf("duplicate note id %d", n.ID)
		}
		if _, exists := st.records[n.Wine]; !exists {
			return nil, fmt.Errorf("note %d refers to unknown record %d", n.ID, n.Wine)
		}
		st.notes[n.ID] = n
		st.lastID = max(st.lastID, n.ID)
	}
	return &Store{state: st, Today: date.Today}, nil
}

// Snapshot returns all records and notes, in id order.
func (s *Store) Snapshot() (records []Record, notes []Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{state: s.state}
	return tx.Records(), tx.AllNotes()
}

// View runs fn on a read only copy of the store.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{state: s.state.clone(), today: s.Today()}
	return fn(tx)
}

// Update runs fn in a transaction and commits it if fn succeeds and every
// record it touched still satisfies the inventory invariants. A transaction
// must not unbalance a cellar record (acquired = held + consumed children).
func (s *Store) Update(fn func(tx *Tx) error) error { return s.run(fn, true) }

// Repair is like Update, for batch repairs driven by an authoritative external
// recount. Counts are allowed to move away from (or towards) balance; all the
// other invariants are enforced.
func (s *Store) Repair(fn func(tx *Tx) error) error { return s.run(fn, false) }

func (s *Store) run(fn func(tx *Tx) error, balanced bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{
		state:   s.state.clone(),
		before:  s.state,
		touched: make(map[ID]bool),
		today:   s.Today(),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.check(balanced); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// Tx is a store transaction. It is only valid inside the function passed to
// View, Update or Repair.
type Tx struct {
	state   state
	before  state
	touched map[ID]bool // records and notes
	today   date.Date
}

// Today is the date of the transaction.
func (tx *Tx) Today() date.Date { return tx.today }

// Record returns the record with this id.
func (tx *Tx) Record(id ID) (Record, bool) {
	r, ok := tx.state.records[id]
	return r, ok
}

// Get is like Record but returns an error for unknown ids.
func (tx *Tx) Get(id ID) (Record, error) {
	r, ok := tx.state.records[id]
	if !ok {
		return Record{}, fmt.Errorf("record %d: %w", id, ErrNotFound)
	}
	return r, nil
}

// Records returns all records in ascending id order.
func (tx *Tx) Records() []Record {
	list := slices.Collect(maps.Values(tx.state.records))
	slices.SortFunc(list, func(a, b Record) int { return cmp.Compare(a.ID, b.ID) })
	return list
}

// Select returns the records with the given status, in ascending id order.
func (tx *Tx) Select(status Status) []Record {
	return slices.DeleteFunc(tx.Records(), func(r Record) bool { return r.Status != status })
}

// Children returns the records split from parent, in ascending id order.
func (tx *Tx) Children(parent ID) []Record {
	ids := tx.state.children[parent]
	list := make([]Record, 0, len(ids))
	for _, id := range ids {
		list = append(list, tx.state.records[id])
	}
	return list
}

// Create adds a new record and returns it with its assigned id.
func (tx *Tx) Create(r Record) (Record, error) {
	r.ID = tx.state.nextID()
	if r.Added.IsZero() {
		r.Added = tx.today
	}
	if err := r.Validate(); err != nil {
		return Record{}, fmt.Errorf("invalid record %q: %w", r.Name, err)
	}
	if r.ParentID != 0 {
		if _, ok := tx.state.records[r.ParentID]; !ok {
			return Record{}, fmt.Errorf("parent record %d: %w", r.ParentID, ErrNotFound)
		}
	}
	tx.state.records[r.ID] = r
	tx.state.link(r.ParentID, r.ID)
	tx.touch(r.ID)
	return r, nil
}

// Put replaces an existing record.
func (tx *Tx) Put(r Record) error {
	old, ok := tx.state.records[r.ID]
	if !ok {
		return fmt.Errorf("record %d: %w", r.ID, ErrNotFound)
	}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid record %d: %w", r.ID, err)
	}
	if r.ParentID != 0 {
		if _, ok := tx.state.records[r.ParentID]; !ok {
			return fmt.Errorf("parent record %d: %w", r.ParentID, ErrNotFound)
		}
	}
	tx.state.records[r.ID] = r
	if old.ParentID != r.ParentID {
		tx.state.unlink(old.ParentID, r.ID)
		tx.state.link(r.ParentID, r.ID)
	}
	tx.touch(r.ID)
	return nil
}

// Delete removes a record and its notes. Records with children cannot be deleted.
func (tx *Tx) Delete(id ID) error {
	r, ok := tx.state.records[id]
	if !ok {
		return fmt.Errorf("record %d: %w", id, ErrNotFound)
	}
	if n := len(tx.state.children[id]); n > 0 {
		return fmt.Errorf("record %d still has %d consumed records attached", id, n)
	}
	for _, n := range tx.Notes(id) {
		delete(tx.state.notes, n.ID)
	}
	delete(tx.state.records, id)
	tx.state.unlink(r.ParentID, id)
	tx.touch(id)
	return nil
}

// Notes returns the notes of a record in ascending id order.
func (tx *Tx) Notes(wine ID) []Note {
	return slices.DeleteFunc(tx.AllNotes(), func(n Note) bool { return n.Wine != wine })
}

// AllNotes returns every note in ascending id order.
func (tx *Tx) AllNotes() []Note {
	list := slices.Collect(maps.Values(tx.state.notes))
	slices.SortFunc(list, func(a, b Note) int { return cmp.Compare(a.ID, b.ID) })
	return list
}

// AddNote attaches a new note to its record.
func (tx *Tx) AddNote(n Note) (Note, error) {
	if _, ok := tx.state.records[n.Wine]; !ok {
		return Note{}, fmt.Errorf("note owner %d: %w", n.Wine, ErrNotFound)
	}
	if n.Score < 0 || n.Score > 100 {
		return Note{}, fmt.Errorf("score must be between 1 and 100, got %d", n.Score)
	}
	n.ID = tx.state.nextID()
	if n.Date.IsZero() {
		n.Date = tx.today
	}
	tx.state.notes[n.ID] = n
	tx.touch(n.ID)
	return n, nil
}

// PutNote replaces an existing note, possibly moving it to another record.
func (tx *Tx) PutNote(n Note) error {
	if _, ok := tx.state.notes[n.ID]; !ok {
		return fmt.Errorf("note %d: %w", n.ID, ErrNotFound)
	}
	if _, ok := tx.state.records[n.Wine]; !ok {
		return fmt.Errorf("note owner %d: %w", n.Wine, ErrNotFound)
	}
	tx.state.notes[n.ID] = n
	tx.touch(n.ID)
	return nil
}

func (tx *Tx) touch(id ID) {
	if tx.touched != nil {
		tx.touched[id] = true
	}
}
