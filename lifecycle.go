package cellar

import (
	"fmt"
	"strings"

	"github.com/etnz/cellar/date"
)

// Acquisition describes bottles entering the cellar.
type Acquisition struct {
	// Wine holds the descriptive fields of the wine when the acquisition
	// creates a new record. It is ignored when merging into an existing one.
	Wine Record

	Date        date.Date
	Quantity    int
	Price       Money
	From        string
	Stored      string
	AlcoholPct  float64
	Description string
	Notes       string
	OnOrder     bool
	Wishlist    bool // create the record on the wishlist instead of the cellar, Quantity is ignored
}

// Validate checks the acquisition fields.
func (a Acquisition) Validate() error {
	if a.Quantity <= 0 && !a.Wishlist {
		return fmt.Errorf("acquisition quantity must be positive, got %d", a.Quantity)
	}
	if a.Price.Amount().IsNegative() {
		return fmt.Errorf("acquisition price must not be negative, got %s", a.Price)
	}
	return nil
}

// Acquire records an acquisition.
//
// When id is 0 a new record is created from a.Wine, in the cellar (or on the
// wishlist, holding no bottle). Otherwise the bottles are merged into record
// id: quantity and original quantity grow by the same amount, every non empty
// acquisition fact overwrites the stored one, the on order flag is replaced
// by a.OnOrder, and the record moves (back) to the cellar.
//
// A consumed record keeps the history of its consumed bottles: before it moves
// back to the cellar they are split into a consumed child, which takes the
// record's tasting notes.
//
// Acquire is not idempotent: each call adds its quantity.
func Acquire(tx *Tx, id ID, a Acquisition) (Record, error) {
	if err := a.Validate(); err != nil {
		return Record{}, err
	}
	if id == 0 {
		r := a.Wine
		r.Status = Cellar
		r.Quantity, r.OriginalQuantity = a.Quantity, a.Quantity
		if a.Wishlist {
			r.Status = Wishlist
			r.Quantity, r.OriginalQuantity = 0, 0
		}
		if r.SizeML == 0 {
			r.SizeML = DefaultSizeML
		}
		if r.Type == "" {
			r.Type = Red
		}
		r.OnOrder = a.OnOrder
		r.ParentID = 0
		r.DateConsumed = date.Date{}
		mergeAcquisition(&r, a)
		if r.AcqPrice.IsZero() {
			r.AcqPrice = r.Price
		}
		return tx.Create(r)
	}

	r, err := tx.Get(id)
	if err != nil {
		return Record{}, err
	}
	if r.ParentID != 0 {
		return Record{}, fmt.Errorf("record %d is a consumption of record %d, acquire into the parent instead: %w", id, r.ParentID, ErrNotInCellar)
	}
	if a.Wishlist && r.Status != Wishlist {
		return Record{}, fmt.Errorf("record %d is not on the wishlist", id)
	}
	if a.Wishlist {
		mergeAcquisition(&r, a)
		if err := tx.Put(r); err != nil {
			return Record{}, err
		}
		return r, nil
	}
	if r.Status == Consumed && r.Quantity > 0 {
		if err := splitConsumed(tx, r); err != nil {
			return Record{}, err
		}
		r.Quantity = 0
	}
	r.Quantity += a.Quantity
	r.OriginalQuantity += a.Quantity
	mergeAcquisition(&r, a)
	if r.AcqPrice.IsZero() {
		r.AcqPrice = r.Price
	}
	if r.Status != Cellar {
		r.Status = Cellar
		r.DateConsumed = date.Date{}
	}
	r.OnOrder = a.OnOrder
	if err := tx.Put(r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// splitConsumed moves the consumed bottles of r, and its notes, to a new
// consumed child.
func splitConsumed(tx *Tx, r Record) error {
	child := r.offspring(r.Quantity, r.DateConsumed)
	child.AcqNotes = r.AcqNotes
	child, err := tx.Create(child)
	if err != nil {
		return err
	}
	for _, n := range tx.Notes(r.ID) {
		n.Wine = child.ID
		if err := tx.PutNote(n); err != nil {
			return err
		}
	}
	return nil
}

// mergeAcquisition overwrites r's acquisition facts with the non empty ones of a.
func mergeAcquisition(r *Record, a Acquisition) {
	if !a.Date.IsZero() {
		r.AcqDate = a.Date
	}
	if !a.Price.IsZero() {
		r.Price = a.Price
	}
	if s := strings.TrimSpace(a.From); s != "" {
		r.From = s
	}
	if s := strings.TrimSpace(a.Stored); s != "" {
		r.Stored = s
	}
	if a.AlcoholPct != 0 {
		r.AlcoholPct = a.AlcoholPct
	}
	if s := strings.TrimSpace(a.Description); s != "" {
		r.Description = s
	}
	if s := strings.TrimSpace(a.Notes); s != "" {
		r.AcqNotes = s
	}
}

// Consumption describes bottles leaving the cellar.
type Consumption struct {
	Date      date.Date
	Quantity  int
	Rating    int   // overrides the rating of the consumed bottles when not 0
	DrinkFrom int   // overrides the drinking window when not 0
	DrinkTo   int   // overrides the drinking window when not 0
	Note      *Note // optional tasting note for the consumed bottles
}

// Validate checks the consumption fields.
func (c Consumption) Validate() error {
	if c.Quantity <= 0 {
		return fmt.Errorf("consumption quantity must be positive, got %d", c.Quantity)
	}
	if c.Rating < 0 || c.Rating > 100 {
		return fmt.Errorf("rating must be between 1 and 100, got %d", c.Rating)
	}
	return nil
}

// Consume records the consumption of bottles from cellar record id and returns
// the record that now represents the consumed bottles.
//
// The quantity is clamped to what the record holds. A partial consumption
// splits the record: the parent keeps the remaining bottles and a new consumed
// child takes the consumed ones. A full consumption flips the record itself to
// consumed. Rating and drinking window overrides, and the tasting note, go to
// the consumed record only.
func Consume(tx *Tx, id ID, c Consumption) (Record, error) {
	if err := c.Validate(); err != nil {
		return Record{}, err
	}
	r, err := tx.Get(id)
	if err != nil {
		return Record{}, err
	}
	if r.Status != Cellar {
		return Record{}, fmt.Errorf("cannot consume record %d with status %s: %w", id, r.Status, ErrNotInCellar)
	}
	if r.Quantity <= 0 {
		return Record{}, fmt.Errorf("record %d has no bottle left: %w", id, ErrNotInCellar)
	}
	on := c.Date
	if on.IsZero() {
		on = tx.Today()
	}
	quantity := min(c.Quantity, r.Quantity)

	var consumed Record
	if r.Quantity > quantity {
		r.Quantity -= quantity
		if err := tx.Put(r); err != nil {
			return Record{}, err
		}
		child := r.offspring(quantity, on)
		applyOverrides(&child, c)
		if consumed, err = tx.Create(child); err != nil {
			return Record{}, err
		}
	} else {
		r.Status = Consumed
		r.DateConsumed = on
		r.OnOrder = false
		applyOverrides(&r, c)
		if err := tx.Put(r); err != nil {
			return Record{}, err
		}
		consumed = r
	}

	if c.Note != nil && !c.Note.IsEmpty() {
		n := *c.Note
		n.Wine = consumed.ID
		if n.Date.IsZero() {
			n.Date = on
		}
		if _, err := tx.AddNote(n); err != nil {
			return Record{}, err
		}
	}
	return consumed, nil
}

func applyOverrides(r *Record, c Consumption) {
	if c.Rating != 0 {
		r.Rating = c.Rating
	}
	if c.DrinkFrom != 0 {
		r.DrinkFrom = c.DrinkFrom
	}
	if c.DrinkTo != 0 {
		r.DrinkTo = c.DrinkTo
	}
}
