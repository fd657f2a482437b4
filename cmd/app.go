// Package cmd implements the CLI application to manage a wine cellar.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/cellar"
	"github.com/etnz/cellar/date"
	"github.com/etnz/cellar/sqlite"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	cellarFile      = flag.String("file", envOr(EnvFile, "cellar.jsonl"), "Path to the cellar file, .jsonl or .db/.sqlite")
	defaultCurrency = flag.String("currency", envOr(EnvCurrency, "USD"), "Currency of prices given without one")
	Verbose         = flag.Bool("v", envBool(EnvVerbose), "Verbose logging")
)

// Commands lists every subcommand with its group.
var Commands = []struct {
	Group   string
	Command subcommands.Command
}{
	{"wines", &addCmd{}},
	{"wines", &wishCmd{}},
	{"wines", &editCmd{}},
	{"wines", &consumeCmd{}},
	{"wines", &noteCmd{}},
	{"wines", &rmCmd{}},
	{"reports", &listCmd{}},
	{"reports", &showCmd{}},
	{"maintenance", &reconcileCmd{}},
	{"maintenance", &reassociateCmd{}},
	{"maintenance", &importCmd{}},
	{"maintenance", &fmtCmd{}},
	{"help", &topicCmd{}},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd.Command, cmd.Group)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

// Logger returns the application logger, at debug level in verbose mode.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *Verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// today is the date stamped on new records. CELLAR_TESTING_TODAY pins it for
// documentation tests.
func today() date.Date {
	if v := os.Getenv(EnvTestingToday); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			panic(err)
		}
		return d
	}
	return date.Today()
}

// storage is where the cellar is persisted.
type storage interface {
	Load() (*cellar.Store, error)
	Save(*cellar.Store) error
	Close() error
}

type jsonlFile string

func (f jsonlFile) Load() (*cellar.Store, error) { return cellar.Load(string(f)) }
func (f jsonlFile) Save(s *cellar.Store) error  { return cellar.Save(string(f), s) }
func (f jsonlFile) Close() error                { return nil }

// openStorage picks the storage from the cellar file extension.
func openStorage(path string) (storage, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return sqlite.Open(path)
	case ".jsonl", ".json", "":
		return jsonlFile(path), nil
	default:
		return nil, fmt.Errorf("unsupported cellar file %q, want .jsonl, .db or .sqlite", path)
	}
}

// DecodeCellar loads the cellar from the app cellar file.
func DecodeCellar() (*cellar.Store, error) {
	st, err := openStorage(*cellarFile)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	s, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load cellar %q: %w", *cellarFile, err)
	}
	s.Today = today
	return s, nil
}

// EncodeCellar writes the cellar back into the app cellar file.
func EncodeCellar(s *cellar.Store) error {
	st, err := openStorage(*cellarFile)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Save(s); err != nil {
		return fmt.Errorf("could not save cellar %q: %w", *cellarFile, err)
	}
	return nil
}

// update loads the cellar, runs fn in an update transaction and saves the result.
func update(fn func(tx *cellar.Tx) error) subcommands.ExitStatus {
	s, err := DecodeCellar()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := s.Update(fn); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := EncodeCellar(s); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders markdown for the terminal, or prints it raw when
// rendering fails.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

// parseDate parses a date flag, empty meaning unknown.
func parseDate(s string) (date.Date, error) {
	if s == "" {
		return date.Date{}, nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// parsePrice parses "45.50" or "45.50 EUR" into money.
func parsePrice(s string) (cellar.Money, error) {
	if s == "" {
		return cellar.Money{}, nil
	}
	amount, cur, _ := strings.Cut(strings.TrimSpace(s), " ")
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return cellar.Money{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if cur == "" {
		cur = *defaultCurrency
	}
	return cellar.M(v, strings.ToUpper(cur)), nil
}

// year is the current year, used to tell ready wines.
func year() int { return today().Year() }
