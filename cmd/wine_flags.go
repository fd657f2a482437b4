package cmd

import (
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/cellar"
)

// wineFlags are the flags describing a new wine.
type wineFlags struct {
	name        string
	producer    string
	vintage     int
	wineType    string
	appellation string
	varietals   string
	size        int
	alcohol     float64
	description string
}

func (w *wineFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&w.name, "name", "", `Wine name, a leading vintage and a trailing size are parsed: "2016 Barolo (1.5l)"`)
	f.StringVar(&w.producer, "producer", "", "Producer")
	f.IntVar(&w.vintage, "vintage", 0, "Vintage year, 0 for non vintage")
	f.StringVar(&w.wineType, "type", "Red", "Wine type (Red, White, Rosé, Sparkling, Dessert, Fortified)")
	f.StringVar(&w.appellation, "appellation", "", "Appellation")
	f.StringVar(&w.varietals, "varietals", "", "Comma separated list of up to 4 varietals")
	f.IntVar(&w.size, "size", 0, "Bottle size in ml, 750 by default")
	f.Float64Var(&w.alcohol, "alcohol", 0, "Alcohol by volume, in percent")
	f.StringVar(&w.description, "description", "", "Free text description")
}

// record builds the wine described by the flags.
func (w *wineFlags) record() (cellar.Record, error) {
	vintage, name, size := cellar.ParseWineName(w.name)
	if name == "" {
		return cellar.Record{}, fmt.Errorf("-name is required")
	}
	if w.vintage != 0 {
		vintage = w.vintage
	}
	if w.size != 0 {
		size = w.size
	}
	t, err := cellar.ParseWineType(w.wineType)
	if err != nil {
		return cellar.Record{}, err
	}
	varietals, err := parseVarietals(w.varietals)
	if err != nil {
		return cellar.Record{}, err
	}
	return cellar.Record{
		Name:        name,
		Producer:    w.producer,
		Vintage:     vintage,
		Type:        t,
		Appellation: w.appellation,
		Varietals:   varietals,
		SizeML:      size,
		AlcoholPct:  w.alcohol,
		Description: w.description,
	}, nil
}

// parseVarietals splits a comma separated list of varietals.
func parseVarietals(s string) (list [4]string, err error) {
	var n int
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v == "" {
			continue
		}
		if n == len(list) {
			return list, fmt.Errorf("at most %d varietals are supported", len(list))
		}
		list[n] = v
		n++
	}
	return list, nil
}
