package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/etnz/cellar"
	"github.com/google/subcommands"
)

// run parses args for the command and executes it.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("%s %v: %v", c.Name(), args, err)
	}
	return c.Execute(context.Background(), f)
}

// useCellar points the global -file flag to path for the duration of the test.
func useCellar(t *testing.T, path string) {
	t.Helper()
	old := *cellarFile
	*cellarFile = path
	t.Cleanup(func() { *cellarFile = old })
	t.Setenv(EnvTestingToday, "2025-01-15")
}

func load(t *testing.T) ([]cellar.Record, []cellar.Note) {
	t.Helper()
	s, err := DecodeCellar()
	if err != nil {
		t.Fatalf("DecodeCellar() error = %v", err)
	}
	return s.Snapshot()
}

func TestLifecycleCommands(t *testing.T) {
	for _, ext := range []string{".jsonl", ".db"} {
		t.Run(ext, func(t *testing.T) {
			useCellar(t, filepath.Join(t.TempDir(), "cellar"+ext))

			if got := run(t, &addCmd{}, "-name", "2016 Barolo Cannubi (1.5l)", "-producer", "Brezza", "-varietals", "Nebbiolo", "-q", "3", "-price", "45.50"); got != subcommands.ExitSuccess {
				t.Fatalf("add = %v", got)
			}
			if got := run(t, &consumeCmd{}, "-id", "1", "-d", "2024-05-01", "-rating", "93", "-nose", "tar"); got != subcommands.ExitSuccess {
				t.Fatalf("consume = %v", got)
			}
			if got := run(t, &noteCmd{}, "-id", "1", "-overall", "needs time"); got != subcommands.ExitSuccess {
				t.Fatalf("note = %v", got)
			}
			if got := run(t, &wishCmd{}, "-name", "Almaviva", "-vintage", "2015"); got != subcommands.ExitSuccess {
				t.Fatalf("wish = %v", got)
			}

			records, notes := load(t)
			if len(records) != 3 || len(notes) != 2 {
				t.Fatalf("got %d records and %d notes, want 3 and 2", len(records), len(notes))
			}
			parent, child, wish := records[0], records[1], records[2]
			if parent.Vintage != 2016 || parent.Name != "Barolo Cannubi" || parent.SizeML != 1500 || parent.Quantity != 2 ||
				parent.OriginalQuantity != 3 || !parent.Price.Equal(cellar.M(45.5, "USD")) || parent.AcqDate.String() != "2025-01-15" {
				t.Errorf("parent = %+v", parent)
			}
			if child.Status != cellar.Consumed || child.ParentID != 1 || child.Quantity != 1 || child.Rating != 93 || child.DateConsumed.String() != "2024-05-01" {
				t.Errorf("child = %+v", child)
			}
			if wish.Status != cellar.Wishlist || wish.Quantity != 0 || wish.Vintage != 2015 {
				t.Errorf("wish = %+v", wish)
			}
			if notes[0].Wine != child.ID || notes[0].Nose != "tar" || notes[1].Wine != 1 || notes[1].Date.String() != "2025-01-15" {
				t.Errorf("notes = %+v", notes)
			}

			if got := run(t, &reassociateCmd{}); got != subcommands.ExitSuccess {
				t.Fatalf("reassociate = %v", got)
			}
			if _, notes = load(t); notes[1].Wine != child.ID {
				t.Errorf("note stayed on %d, want %d", notes[1].Wine, child.ID)
			}

			if got := run(t, &rmCmd{}, "-id", "1"); got != subcommands.ExitFailure {
				t.Errorf("rm of a parent = %v, want a failure", got)
			}
			if got := run(t, &rmCmd{}, "-id", strconv.FormatInt(int64(wish.ID), 10)); got != subcommands.ExitSuccess {
				t.Errorf("rm = %v", got)
			}
			if records, _ = load(t); len(records) != 2 {
				t.Errorf("got %d records after rm, want 2", len(records))
			}

			for _, c := range []subcommands.Command{&listCmd{}, &showCmd{}} {
				args := []string{}
				if c.Name() == "show" {
					args = []string{"1"}
				}
				if got := run(t, c, args...); got != subcommands.ExitSuccess {
					t.Errorf("%s = %v", c.Name(), got)
				}
			}
		})
	}
}

func TestEditCommand(t *testing.T) {
	useCellar(t, filepath.Join(t.TempDir(), "cellar.jsonl"))
	if got := run(t, &addCmd{}, "-name", "2016 Barolo", "-q", "3", "-stored", "rack A"); got != subcommands.ExitSuccess {
		t.Fatalf("add = %v", got)
	}
	if got := run(t, &consumeCmd{}, "-id", "1"); got != subcommands.ExitSuccess {
		t.Fatalf("consume = %v", got)
	}
	if got := run(t, &editCmd{}, "-id", "1", "-name", "Barolo Cannubi", "-vintage", "2015", "-drink-to", "2035", "-varietals", "Nebbiolo"); got != subcommands.ExitSuccess {
		t.Fatalf("edit = %v", got)
	}

	records, _ := load(t)
	parent, child := records[0], records[1]
	if parent.Name != "Barolo Cannubi" || parent.Vintage != 2015 || parent.DrinkTo != 2035 || parent.Varietals[0] != "Nebbiolo" {
		t.Errorf("parent = %+v", parent)
	}
	if parent.Stored != "rack A" || parent.Type != cellar.Red || parent.Quantity != 2 || parent.OriginalQuantity != 3 {
		t.Errorf("edit changed flags not given: %+v", parent)
	}
	if child.Name != "Barolo Cannubi" || child.Vintage != 2015 {
		t.Errorf("child = %+v", child)
	}

	if got := run(t, &editCmd{}, "-id", "2", "-name", "Barbaresco"); got != subcommands.ExitFailure {
		t.Errorf("edit of a consumed child name = %v, want a failure", got)
	}
	if got := run(t, &editCmd{}, "-id", "1", "-type", "Blue"); got != subcommands.ExitFailure {
		t.Errorf("edit with a bad type = %v, want a failure", got)
	}
}

func TestCommandErrors(t *testing.T) {
	useCellar(t, filepath.Join(t.TempDir(), "cellar.jsonl"))
	tests := []struct {
		name string
		cmd  subcommands.Command
		args []string
		want subcommands.ExitStatus
	}{
		{"add without name", &addCmd{}, nil, subcommands.ExitUsageError},
		{"add bad price", &addCmd{}, []string{"-name", "x", "-price", "cheap"}, subcommands.ExitUsageError},
		{"add bad type", &addCmd{}, []string{"-name", "x", "-type", "Blue"}, subcommands.ExitUsageError},
		{"add into missing", &addCmd{}, []string{"-id", "42"}, subcommands.ExitFailure},
		{"consume without id", &consumeCmd{}, nil, subcommands.ExitUsageError},
		{"consume missing", &consumeCmd{}, []string{"-id", "42"}, subcommands.ExitFailure},
		{"edit without id", &editCmd{}, nil, subcommands.ExitUsageError},
		{"edit missing", &editCmd{}, []string{"-id", "42", "-producer", "x"}, subcommands.ExitFailure},
		{"note without text", &noteCmd{}, []string{"-id", "1"}, subcommands.ExitUsageError},
		{"list bad status", &listCmd{}, []string{"-s", "drunk"}, subcommands.ExitUsageError},
		{"show without id", &showCmd{}, nil, subcommands.ExitUsageError},
		{"show missing", &showCmd{}, []string{"42"}, subcommands.ExitFailure},
		{"reconcile without ledger", &reconcileCmd{}, nil, subcommands.ExitUsageError},
		{"import without csv", &importCmd{}, nil, subcommands.ExitUsageError},
		{"topic unknown", &topicCmd{}, []string{"cork"}, subcommands.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.cmd, tt.args...); got != tt.want {
				t.Errorf("%s %v = %v, want %v", tt.cmd.Name(), tt.args, got, tt.want)
			}
		})
	}
}

func TestReconcileCommand(t *testing.T) {
	dir := t.TempDir()
	useCellar(t, filepath.Join(dir, "cellar.jsonl"))
	if got := run(t, &addCmd{}, "-name", "2016 Barolo", "-q", "2"); got != subcommands.ExitSuccess {
		t.Fatalf("add = %v", got)
	}
	ledger := filepath.Join(dir, "ledger.jsonl")
	content := `{"wine_name": "2016 Barolo (750ml)", "acquired": 3, "in_cellar": 1, "consumed": 2, "acq_events": [{"date": "March 4, 2019", "price": "$45", "from": "K&L"}], "consumed_events": [{"date": "May 1, 2024", "quantity": 2}]}` + "\n"
	if err := os.WriteFile(ledger, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	metrics := filepath.Join(dir, "cellar.prom")

	if got := run(t, &reconcileCmd{}, "-ledger", ledger, "-dry-run"); got != subcommands.ExitSuccess {
		t.Fatalf("reconcile -dry-run = %v", got)
	}
	if records, _ := load(t); len(records) != 1 || records[0].OriginalQuantity != 2 {
		t.Fatalf("dry run changed the cellar: %+v", records)
	}

	if got := run(t, &reconcileCmd{}, "-ledger", ledger, "-metrics", metrics); got != subcommands.ExitSuccess {
		t.Fatalf("reconcile = %v", got)
	}
	records, _ := load(t)
	if len(records) != 2 {
		t.Fatalf("got %d records, want the parent and a consumed child", len(records))
	}
	if p := records[0]; p.OriginalQuantity != 3 || p.Quantity != 1 || p.From != "K&L" {
		t.Errorf("parent = %+v", p)
	}
	if c := records[1]; c.Status != cellar.Consumed || c.Quantity != 2 || c.ParentID != 1 || c.DateConsumed.String() != "2024-05-01" {
		t.Errorf("child = %+v", c)
	}

	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	for _, want := range []string{
		`cellar_reconcile_entries{outcome="matched"} 1`,
		`cellar_reconcile_records{change="created"} 1`,
		`cellar_reconcile_records{change="updated"} 1`,
		"cellar_reconcile_last_run_timestamp_seconds",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics miss %q:\n%s", want, data)
		}
	}
}

func TestImportAndFmt(t *testing.T) {
	dir := t.TempDir()
	useCellar(t, filepath.Join(dir, "cellar.jsonl"))
	csvFile := filepath.Join(dir, "export.csv")
	content := "Vintage,Name,Producer,Quantity,Notes\n2016,Barolo,Brezza,2,\n2012,Sassicaia,San Guido,,Jane: 95 points. Supple\n"
	if err := os.WriteFile(csvFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if got := run(t, &importCmd{}, "-csv", csvFile, "-author", "Jane"); got != subcommands.ExitSuccess {
		t.Fatalf("import = %v", got)
	}
	records, notes := load(t)
	if len(records) != 2 || len(notes) != 1 || notes[0].Score != 95 {
		t.Fatalf("imported %+v %+v", records, notes)
	}

	db := filepath.Join(dir, "cellar.db")
	if got := run(t, &fmtCmd{}, "-o", db); got != subcommands.ExitSuccess {
		t.Fatalf("fmt = %v", got)
	}
	*cellarFile = db
	converted, convertedNotes := load(t)
	if len(converted) != 2 || len(convertedNotes) != 1 || converted[0].Name != records[0].Name {
		t.Errorf("converted cellar = %+v %+v", converted, convertedNotes)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    cellar.Money
		wantErr bool
	}{
		{"", cellar.Money{}, false},
		{"45.50", cellar.M(45.5, "USD"), false},
		{"39 eur", cellar.M(39, "EUR"), false},
		{"cheap", cellar.Money{}, true},
	}
	for _, tt := range tests {
		got, err := parsePrice(tt.in)
		if (err != nil) != tt.wantErr || !got.Equal(tt.want) {
			t.Errorf("parsePrice(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestWineFlags(t *testing.T) {
	w := wineFlags{name: "2015 Almaviva (1.5l)", wineType: "rose", varietals: "Cabernet Sauvignon, Carmenere,"}
	r, err := w.record()
	if err != nil {
		t.Fatal(err)
	}
	if r.Vintage != 2015 || r.Name != "Almaviva" || r.SizeML != 1500 || r.Type != cellar.Rose ||
		r.Varietals != [4]string{"Cabernet Sauvignon", "Carmenere"} {
		t.Errorf("record() = %+v", r)
	}
	w = wineFlags{name: "Blend", wineType: "Red", varietals: "a,b,c,d,e"}
	if _, err := w.record(); err == nil {
		t.Error("record() with 5 varietals succeeded")
	}
}

func TestOpenStorage(t *testing.T) {
	if _, err := openStorage("cellar.xlsx"); err == nil {
		t.Error("openStorage(.xlsx) succeeded")
	}
}
