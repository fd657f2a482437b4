package cellar

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// this file contains functions to import a cellar exported by a cellar
// management site as CSV.

// ImportOptions configures ImportCSV.
type ImportOptions struct {
	// Author is the name prefixing tasting notes in the Notes column, as in
	// "Jane Doe: 4.5 stars. Bright, floral and crisp". Notes without this prefix
	// are imported as the wine description. Empty means every note is a
	// tasting note.
	Author   string
	Currency string // currency of the Price column
}

// ImportResult counts what ImportCSV created.
type ImportResult struct {
	Wines int
	Notes int
}

// ImportCSV imports a cellar CSV export into the store.
//
// The header row is the first one holding both a "Name" and a "Producer"
// column, anything above it is ignored. Rows with a quantity are cellar
// records. Rows without a quantity but with notes are consumed bottles: their
// note goes to the record of the same wine imported earlier, or to a new
// consumed record of one bottle.
func ImportCSV(tx *Tx, r io.Reader, opts ImportOptions) (ImportResult, error) {
	var res ImportResult
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var col map[string]int
	for col == nil {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return res, fmt.Errorf("could not find header row with Name and Producer columns")
		}
		if err != nil {
			return res, fmt.Errorf("cannot read csv: %w", err)
		}
		cleaned := make([]string, len(row))
		for i, c := range row {
			cleaned[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
		}
		if slices.Contains(cleaned, "Name") && slices.Contains(cleaned, "Producer") {
			col = make(map[string]int, len(cleaned))
			for i, h := range cleaned {
				col[strings.ToLower(h)] = i
			}
		}
	}

	type wineKey struct {
		vintage        int
		name, producer string
	}
	seen := make(map[wineKey]ID)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("cannot read csv: %w", err)
		}
		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name, producer := field("name"), field("producer")
		if name == "" || producer == "" {
			continue
		}
		rec := Record{
			Name:        name,
			Producer:    producer,
			Appellation: field("appellation"),
			SizeML:      DefaultSizeML,
			Stored:      field("stored"),
		}
		rec.Vintage, _ = strconv.Atoi(field("vintage"))
		varietals := splitVarietals(field("varietal"))
		copy(rec.Varietals[:], varietals)
		if size, err := strconv.Atoi(field("size")); err == nil && size > 0 {
			rec.SizeML = size
		}
		if price, err := strconv.ParseFloat(field("price"), 64); err == nil && price > 0 {
			rec.Price = M(price, opts.Currency)
			rec.AcqPrice = rec.Price
		}
		rec.Type = DetectType(name, rec.Appellation, varietals)

		notes := field("notes")
		tasting := notes != "" && (opts.Author == "" || strings.Contains(notes, opts.Author))
		key := wineKey{rec.Vintage, name, producer}

		qty := field("quantity")
		var owner ID
		switch {
		case qty != "":
			quantity, err := strconv.Atoi(qty)
			if err != nil || quantity <= 0 {
				quantity = 1
			}
			rec.Status = Cellar
			rec.Quantity, rec.OriginalQuantity = quantity, quantity
			if notes != "" && !tasting {
				rec.Description = notes
			}
			created, err := tx.Create(rec)
			if err != nil {
				return res, fmt.Errorf("cannot import %q: %w", name, err)
			}
			res.Wines++
			seen[key] = created.ID
			owner = created.ID

		case notes != "":
			var ok bool
			if owner, ok = seen[key]; !ok {
				rec.Status = Consumed
				rec.Quantity, rec.OriginalQuantity = 1, 1
				created, err := tx.Create(rec)
				if err != nil {
					return res, fmt.Errorf("cannot import %q: %w", name, err)
				}
				res.Wines++
				seen[key] = created.ID
				owner = created.ID
			}
			tasting = true

		default:
			continue
		}

		if !tasting {
			continue
		}
		n := ParseTastingNote(notes, opts.Author)
		n.Wine = owner
		if _, err := tx.AddNote(n); err != nil {
			return res, fmt.Errorf("cannot import note of %q: %w", name, err)
		}
		res.Notes++
	}
	return res, nil
}

func splitVarietals(s string) []string {
	var list []string
	for _, v := range strings.Split(s, "-") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	if len(list) > 4 {
		list = list[:4]
	}
	return list
}

var (
	starsRE      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*stars?`)
	pointsRE     = regexp.MustCompile(`(\d+)\s*points?`)
	leadScoreRE  = regexp.MustCompile(`^\d+(?:\.\d+)?\s*(?:stars?|points?)\s*`)
	noteSections = map[string]string{
		"pale": "appearance", "bright": "appearance", "deep": "appearance",
		"dark": "appearance", "evolved": "appearance",
		"fragrant": "nose", "floral": "nose", "complex": "nose",
		"intense": "nose", "discreet": "nose", "nutty": "nose",
		"supple": "palate", "crisp": "palate", "lively": "palate",
		"tannic": "palate", "flat": "palate", "woody": "palate",
		"light-bodied": "palate", "medium-bodied": "palate",
		"full-bodied": "palate", "alcoholic": "palate",
	}
)

// ParseTastingNote reads a free text tasting note: a "4.5 stars" rating is
// scaled to 100, a "92 points" score is kept as is, and known descriptors are
// sorted into appearance, nose and palate. The text, without the author prefix
// and the leading score, is the overall note.
func ParseTastingNote(text, author string) Note {
	var n Note
	if m := starsRE.FindStringSubmatch(text); m != nil {
		stars, _ := strconv.ParseFloat(m[1], 64)
		n.Score = int(stars * 20)
	}
	if m := pointsRE.FindStringSubmatch(text); m != nil {
		n.Score, _ = strconv.Atoi(m[1])
	}
	n.Score = min(max(n.Score, 0), 100)

	overall := strings.TrimSpace(text)
	if author != "" {
		if rest, ok := strings.CutPrefix(overall, author); ok {
			overall = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ":"))
		}
	}
	overall = strings.TrimLeft(leadScoreRE.ReplaceAllString(overall, ""), ".,;: ")
	n.Overall = overall

	var appearance, nose, palate []string
	for _, word := range strings.Fields(strings.ToLower(overall)) {
		word = strings.Trim(word, ",.;:")
		switch noteSections[word] {
		case "appearance":
			appearance = append(appearance, word)
		case "nose":
			nose = append(nose, word)
		case "palate":
			palate = append(palate, word)
		}
	}
	n.Appearance = strings.Join(appearance, ", ")
	n.Nose = strings.Join(nose, ", ")
	n.Palate = strings.Join(palate, ", ")
	return n
}

var (
	whiteGrapes = []string{
		"Chardonnay", "Sauvignon Blanc", "Pinot Grigio", "Pinot Gris",
		"Riesling", "Gewürztraminer", "Viognier", "Sémillon", "Aligoté",
		"Pinot Blanc", "Chenin Blanc", "Muscat", "Grenache Blanc",
		"Roussanne", "Marsanne", "Falanghina", "Prosecco", "Xarel-Lo",
		"Macabeo", "Parellada", "Grenache Gris", "Vermentino",
		"Sauvignon Blanc-Sémillon",
	}
	sparklingWords = []string{"champagne", "brut", "sparkling", "prosecco", "franciacorta"}
	dessertWords   = []string{"sauternes", "barsac"}
)

// DetectType guesses the type of a wine from its name, appellation and varietals.
func DetectType(name, appellation string, varietals []string) WineType {
	lname, lappellation := strings.ToLower(name), strings.ToLower(appellation)
	contains := func(s string, words []string) bool {
		return slices.ContainsFunc(words, func(w string) bool { return strings.Contains(s, w) })
	}
	switch {
	case contains(lname, sparklingWords):
		return Sparkling
	case contains(lappellation, dessertWords):
		return Dessert
	case strings.Contains(name, "Rosé") || strings.Contains(name, "Rose"):
		return Rose
	case len(varietals) > 0 && !slices.ContainsFunc(varietals, func(v string) bool { return !slices.Contains(whiteGrapes, v) }):
		return White
	default:
		return Red
	}
}
