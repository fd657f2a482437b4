package cellar

// Reassociate moves the tasting notes held by cellar records to the consumed
// child they most likely describe: the child with the latest consumption date
// (the higher id on a tie). Each moved note takes the child's consumption date.
// Cellar records without a dated consumed child keep their notes.
//
// Notes are written while tasting a bottle, so they belong with the consumed
// bottles. Run it after reconciliation has dated the consumed children.
func Reassociate(tx *Tx) (moved int, err error) {
	byOwner := make(map[ID][]Note)
	for _, n := range tx.AllNotes() {
		byOwner[n.Wine] = append(byOwner[n.Wine], n)
	}

	for _, r := range tx.Select(Cellar) {
		notes := byOwner[r.ID]
		if len(notes) == 0 {
			continue
		}
		var target Record
		for _, c := range tx.Children(r.ID) {
			if c.Status != Consumed || c.DateConsumed.IsZero() {
				continue
			}
			if target.ID == 0 || !c.DateConsumed.Before(target.DateConsumed) {
				target = c
			}
		}
		if target.ID == 0 {
			continue
		}
		for _, n := range notes {
			n.Wine = target.ID
			n.Date = target.DateConsumed
			if err := tx.PutNote(n); err != nil {
				return moved, err
			}
			moved++
		}
	}
	return moved, nil
}
