package cellar

import (
	"encoding/json"
	"strings"

	"github.com/etnz/cellar/date"
)

// Note is a tasting note. It belongs to exactly one record at a time.
type Note struct {
	ID         ID
	Wine       ID // owning record
	Date       date.Date
	Appearance string
	Nose       string
	Palate     string
	Finish     string
	Overall    string
	Score      int // 1-100, 0 when not scored
}

// IsEmpty reports whether the note carries no information at all.
func (n Note) IsEmpty() bool {
	return strings.TrimSpace(n.Appearance+n.Nose+n.Palate+n.Finish+n.Overall) == "" && n.Score == 0
}

// MarshalJSON implements the json.Marshaler interface for Note.
func (n Note) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", n.ID)
	w.Append("wine", n.Wine)
	w.Optional("date", n.Date)
	w.Optional("appearance", n.Appearance)
	w.Optional("nose", n.Nose)
	w.Optional("palate", n.Palate)
	w.Optional("finish", n.Finish)
	w.Optional("overall", n.Overall)
	w.Optional("score", n.Score)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Note.
func (n *Note) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID         ID        `json:"id"`
		Wine       ID        `json:"wine"`
		Date       date.Date `json:"date"`
		Appearance string    `json:"appearance"`
		Nose       string    `json:"nose"`
		Palate     string    `json:"palate"`
		Finish     string    `json:"finish"`
		Overall    string    `json:"overall"`
		Score      int       `json:"score"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*n = Note(temp)
	return nil
}
