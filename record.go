package cellar

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/cellar/date"
)

// ID identifies a record or a note. IDs are assigned by the Store in ascending
// order and never reused, so sorting by ID is sorting by creation order.
type ID int64

// Status is the lifecycle state of a Record.
type Status string

// Lifecycle states.
const (
	Wishlist Status = "wishlist"
	Cellar   Status = "cellar"
	Consumed Status = "consumed"
)

// ParseStatus parses a string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case Wishlist, Cellar, Consumed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// WineType is the closed set of wine styles.
type WineType string

// Wine types.
const (
	Red       WineType = "Red"
	White     WineType = "White"
	Rose      WineType = "Rosé"
	Sparkling WineType = "Sparkling"
	Dessert   WineType = "Dessert"
	Fortified WineType = "Fortified"
)

// WineTypes lists all wine types in display order.
var WineTypes = []WineType{Red, White, Rose, Sparkling, Dessert, Fortified}

// ParseWineType parses a wine type, case insensitively. "Rose" is accepted for "Rosé".
func ParseWineType(s string) (WineType, error) {
	for _, t := range WineTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	if strings.EqualFold(s, "rose") {
		return Rose, nil
	}
	return "", fmt.Errorf("unknown wine type %q", s)
}

// DefaultSizeML is the standard bottle size.
const DefaultSizeML = 750

// Record is one batch of bottles of the same wine, acquired or consumed together.
//
// A consumed record may point to the cellar record it was split from through ParentID.
type Record struct {
	ID ID

	// Wine information.
	Name        string
	Producer    string
	Vintage     int // 0 for non vintage wines
	Type        WineType
	Appellation string
	Varietals   [4]string
	SizeML      int
	AlcoholPct  float64
	Description string

	// Acquisition information.
	AcqDate  date.Date
	Price    Money // current unit price
	AcqPrice Money // unit price as originally recorded
	From     string
	OnOrder  bool
	Stored   string
	AcqNotes string

	// Lifecycle.
	Status           Status
	Quantity         int
	OriginalQuantity int
	DateConsumed     date.Date
	DrinkFrom        int
	DrinkTo          int
	Rating           int // 1-100, 0 when not rated
	ParentID         ID
	Added            date.Date
}

// Key returns the matching key of the record.
func (r Record) Key() Key { return Key{Vintage: r.Vintage, Name: NormalizeName(r.Name)} }

// Label returns a human readable "2016 Barolo (750ml)" label.
func (r Record) Label() string {
	var b strings.Builder
	if r.Vintage != 0 {
		fmt.Fprintf(&b, "%d ", r.Vintage)
	}
	b.WriteString(r.Name)
	if r.SizeML != 0 {
		fmt.Fprintf(&b, " (%s)", SizeLabel(r.SizeML))
	}
	return b.String()
}

// SizeLabel formats a bottle size, "750ml" or "1.5l".
func SizeLabel(ml int) string {
	if ml >= 1000 {
		return strings.TrimSuffix(strings.TrimSuffix(fmt.Sprintf("%.2f", float64(ml)/1000), "0"), ".0") + "l"
	}
	return fmt.Sprintf("%dml", ml)
}

// VarietalsDisplay returns a comma separated list of the varietals.
func (r Record) VarietalsDisplay() string {
	var parts []string
	for _, v := range r.Varietals {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// Value is the current price of the bottles held by this record.
func (r Record) Value() Money { return r.Price.Times(r.Quantity) }

// IsReady reports whether the drinking window includes year.
func (r Record) IsReady(year int) bool {
	if r.DrinkFrom != 0 && year < r.DrinkFrom {
		return false
	}
	if r.DrinkTo != 0 && year > r.DrinkTo {
		return false
	}
	return true
}

// offspring returns a consumed copy of r's descriptive fields, used both when a
// consumption splits a cellar record and when reconciliation synthesizes a
// missing consumption.
func (r Record) offspring(quantity int, on date.Date) Record {
	return Record{
		Name:             r.Name,
		Producer:         r.Producer,
		Vintage:          r.Vintage,
		Type:             r.Type,
		Appellation:      r.Appellation,
		Varietals:        r.Varietals,
		SizeML:           r.SizeML,
		AlcoholPct:       r.AlcoholPct,
		Description:      r.Description,
		AcqDate:          r.AcqDate,
		Price:            r.Price,
		AcqPrice:         r.AcqPrice,
		From:             r.From,
		Stored:           r.Stored,
		Status:           Consumed,
		Quantity:         quantity,
		OriginalQuantity: quantity,
		DateConsumed:     on,
		DrinkFrom:        r.DrinkFrom,
		DrinkTo:          r.DrinkTo,
		Rating:           r.Rating,
		ParentID:         r.ID,
	}
}

// Validate checks the record fields that do not depend on other records.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("wine name is missing")
	}
	if _, err := ParseStatus(string(r.Status)); err != nil {
		return err
	}
	if r.Type != "" {
		if _, err := ParseWineType(string(r.Type)); err != nil {
			return err
		}
	}
	if r.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative, got %d", r.Quantity)
	}
	if r.Rating < 0 || r.Rating > 100 {
		return fmt.Errorf("rating must be between 1 and 100, got %d", r.Rating)
	}
	if r.DrinkFrom != 0 && r.DrinkTo != 0 && r.DrinkFrom > r.DrinkTo {
		return fmt.Errorf("drinking window %d-%d is reversed", r.DrinkFrom, r.DrinkTo)
	}
	if r.ParentID == r.ID && r.ID != 0 {
		return fmt.Errorf("record %d cannot be its own parent", r.ID)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Record.
func (r Record) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", r.ID)
	w.Append("name", r.Name)
	w.Optional("producer", r.Producer)
	w.Optional("vintage", r.Vintage)
	w.Optional("type", r.Type)
	w.Optional("appellation", r.Appellation)
	var varietals []string
	for _, v := range r.Varietals {
		if v != "" {
			varietals = append(varietals, v)
		}
	}
	w.Optional("varietals", varietals)
	w.Optional("sizeMl", r.SizeML)
	w.Optional("alcohol", r.AlcoholPct)
	w.Optional("description", r.Description)
	w.Optional("acqDate", r.AcqDate)
	w.Optional("price", r.Price)
	w.Optional("acqPrice", r.AcqPrice)
	w.Optional("from", r.From)
	w.Optional("onOrder", r.OnOrder)
	w.Optional("stored", r.Stored)
	w.Optional("acqNotes", r.AcqNotes)
	w.Append("status", r.Status)
	w.Append("quantity", r.Quantity)
	w.Append("originalQuantity", r.OriginalQuantity)
	w.Optional("dateConsumed", r.DateConsumed)
	w.Optional("drinkFrom", r.DrinkFrom)
	w.Optional("drinkTo", r.DrinkTo)
	w.Optional("rating", r.Rating)
	w.Optional("parent", r.ParentID)
	w.Optional("added", r.Added)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID               ID        `json:"id"`
		Name             string    `json:"name"`
		Producer         string    `json:"producer"`
		Vintage          int       `json:"vintage"`
		Type             WineType  `json:"type"`
		Appellation      string    `json:"appellation"`
		Varietals        []string  `json:"varietals"`
		SizeML           int       `json:"sizeMl"`
		AlcoholPct       float64   `json:"alcohol"`
		Description      string    `json:"description"`
		AcqDate          date.Date `json:"acqDate"`
		Price            Money     `json:"price"`
		AcqPrice         Money     `json:"acqPrice"`
		From             string    `json:"from"`
		OnOrder          bool      `json:"onOrder"`
		Stored           string    `json:"stored"`
		AcqNotes         string    `json:"acqNotes"`
		Status           Status    `json:"status"`
		Quantity         int       `json:"quantity"`
		OriginalQuantity int       `json:"originalQuantity"`
		DateConsumed     date.Date `json:"dateConsumed"`
		DrinkFrom        int       `json:"drinkFrom"`
		DrinkTo          int       `json:"drinkTo"`
		Rating           int       `json:"rating"`
		ParentID         ID        `json:"parent"`
		Added            date.Date `json:"added"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	if len(temp.Varietals) > len(r.Varietals) {
		return fmt.Errorf("record %d has %d varietals, at most %d are supported", temp.ID, len(temp.Varietals), len(r.Varietals))
	}
	*r = Record{
		ID:               temp.ID,
		Name:             temp.Name,
		Producer:         temp.Producer,
		Vintage:          temp.Vintage,
		Type:             temp.Type,
		Appellation:      temp.Appellation,
		SizeML:           temp.SizeML,
		AlcoholPct:       temp.AlcoholPct,
		Description:      temp.Description,
		AcqDate:          temp.AcqDate,
		Price:            temp.Price,
		AcqPrice:         temp.AcqPrice,
		From:             temp.From,
		OnOrder:          temp.OnOrder,
		Stored:           temp.Stored,
		AcqNotes:         temp.AcqNotes,
		Status:           temp.Status,
		Quantity:         temp.Quantity,
		OriginalQuantity: temp.OriginalQuantity,
		DateConsumed:     temp.DateConsumed,
		DrinkFrom:        temp.DrinkFrom,
		DrinkTo:          temp.DrinkTo,
		Rating:           temp.Rating,
		ParentID:         temp.ParentID,
		Added:            temp.Added,
	}
	copy(r.Varietals[:], temp.Varietals)
	// older files did not track the original quantity.
	if r.OriginalQuantity == 0 {
		r.OriginalQuantity = r.Quantity
	}
	return nil
}
