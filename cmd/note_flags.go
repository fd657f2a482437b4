package cmd

import (
	"flag"

	"github.com/etnz/cellar"
)

// noteFlags are the flags of a tasting note.
type noteFlags struct {
	appearance string
	nose       string
	palate     string
	finish     string
	overall    string
	score      int
}

func (n *noteFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&n.appearance, "appearance", "", "Tasting note: appearance")
	f.StringVar(&n.nose, "nose", "", "Tasting note: nose")
	f.StringVar(&n.palate, "palate", "", "Tasting note: palate")
	f.StringVar(&n.finish, "finish", "", "Tasting note: finish")
	f.StringVar(&n.overall, "overall", "", "Tasting note: overall impression")
	f.IntVar(&n.score, "score", 0, "Tasting note: score out of 100")
}

// note returns the tasting note, nil when no note flag was set.
func (n *noteFlags) note() *cellar.Note {
	note := &cellar.Note{
		Appearance: n.appearance,
		Nose:       n.nose,
		Palate:     n.palate,
		Finish:     n.finish,
		Overall:    n.overall,
		Score:      n.score,
	}
	if note.IsEmpty() {
		return nil
	}
	return note
}
