package renderer

import (
	"github.com/etnz/cellar"
)

// Cellar is a list of wines with totals.
type Cellar struct {
	Title   string
	Wines   []Wine
	Bottles int
	Value   cellar.Money
	Ready   int
}

// NewCellar prepares records for a listing.
func NewCellar(title string, records []cellar.Record, year int) *Cellar {
	c := &Cellar{Title: title}
	for _, r := range records {
		w := NewWine(r, year)
		c.Wines = append(c.Wines, w)
		c.Bottles += r.Quantity
		if w.Status == cellar.Cellar {
			c.Value = c.Value.Add(w.Value)
		}
		if w.Ready {
			c.Ready++
		}
	}
	return c
}
