package renderer

import (
	"fmt"

	"github.com/etnz/cellar"
)

// Wine is a record as displayed in reports.
type Wine struct {
	ID               cellar.ID
	Label            string
	Producer         string
	Type             cellar.WineType
	Appellation      string
	Varietals        string
	Status           cellar.Status
	Quantity         int
	OriginalQuantity int
	Price            cellar.Money
	Value            cellar.Money
	Acquired         string
	From             string
	Stored           string
	OnOrder          bool
	Consumed         string
	Rating           int
	Window           string
	Ready            bool
	Description      string
}

// NewWine prepares a record for display. year is used to tell whether the
// wine is ready to drink.
func NewWine(r cellar.Record, year int) Wine {
	return Wine{
		ID:               r.ID,
		Label:            r.Label(),
		Producer:         r.Producer,
		Type:             r.Type,
		Appellation:      r.Appellation,
		Varietals:        r.VarietalsDisplay(),
		Status:           r.Status,
		Quantity:         r.Quantity,
		OriginalQuantity: r.OriginalQuantity,
		Price:            r.Price,
		Value:            r.Value(),
		Acquired:         r.AcqDate.String(),
		From:             r.From,
		Stored:           r.Stored,
		OnOrder:          r.OnOrder,
		Consumed:         r.DateConsumed.String(),
		Rating:           r.Rating,
		Window:           window(r.DrinkFrom, r.DrinkTo),
		Ready:            r.Status == cellar.Cellar && (r.DrinkFrom != 0 || r.DrinkTo != 0) && r.IsReady(year),
		Description:      r.Description,
	}
}

// window formats a drinking window, "2024-2030", "2024+" or "-2030".
func window(from, to int) string {
	switch {
	case from == 0 && to == 0:
		return ""
	case to == 0:
		return fmt.Sprintf("%d+", from)
	case from == 0:
		return fmt.Sprintf("-%d", to)
	default:
		return fmt.Sprintf("%d-%d", from, to)
	}
}

// TastingNote is a note as displayed in reports.
type TastingNote struct {
	Date       string
	Wine       cellar.ID
	Appearance string
	Nose       string
	Palate     string
	Finish     string
	Overall    string
	Score      int
}

// NewTastingNote prepares a note for display.
func NewTastingNote(n cellar.Note) TastingNote {
	return TastingNote{
		Date:       n.Date.String(),
		Wine:       n.Wine,
		Appearance: n.Appearance,
		Nose:       n.Nose,
		Palate:     n.Palate,
		Finish:     n.Finish,
		Overall:    n.Overall,
		Score:      n.Score,
	}
}

// WineDetail is a single wine with its history.
type WineDetail struct {
	Wine         Wine
	Parent       *Wine
	Consumptions []Wine
	Notes        []TastingNote
}

// NewWineDetail gathers a record, its consumed children and the notes of both.
// parent is nil unless the record was split from a cellar record.
func NewWineDetail(r cellar.Record, parent *cellar.Record, children []cellar.Record, notes []cellar.Note, year int) *WineDetail {
	d := &WineDetail{Wine: NewWine(r, year)}
	if parent != nil {
		p := NewWine(*parent, year)
		d.Parent = &p
	}
	for _, c := range children {
		d.Consumptions = append(d.Consumptions, NewWine(c, year))
	}
	for _, n := range notes {
		d.Notes = append(d.Notes, NewTastingNote(n))
	}
	return d
}
