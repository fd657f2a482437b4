package cellar

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// kinds of lines in a cellar file.
const (
	kindWine = "wine"
	kindNote = "note"
)

// This file persists a cellar as JSONL: one record or note per line, records
// first, in id order, so that the file is human readable and git friendly.
//
//	{"kind":"wine","id":1,"name":"Barolo","vintage":2016,...,"status":"cellar","quantity":1,"originalQuantity":2}
//	{"kind":"wine","id":2,"name":"Barolo","vintage":2016,...,"status":"consumed","quantity":1,"parent":1}
//	{"kind":"note","id":3,"wine":2,"date":"2024-05-01","nose":"tar and roses"}

// Encode writes the whole store to w in JSONL format.
func Encode(w io.Writer, s *Store) error {
	records, notes := s.Snapshot()
	for _, r := range records {
		if err := encodeLine(w, kindWine, r); err != nil {
			return fmt.Errorf("cannot encode record %d: %w", r.ID, err)
		}
	}
	for _, n := range notes {
		if err := encodeLine(w, kindNote, n); err != nil {
			return fmt.Errorf("cannot encode note %d: %w", n.ID, err)
		}
	}
	return nil
}

func encodeLine(w io.Writer, kind string, v any) error {
	var obj jsonObjectWriter
	obj.Append("kind", kind)
	obj.EmbedFrom(v)
	line, err := obj.MarshalJSON()
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = w.Write(line)
	return err
}

// Decode reads a JSONL cellar and returns the store.
func Decode(r io.Reader) (*Store, error) {
	var records []Record
	var notes []Note

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify kind in line %q: %w", string(line), err)
		}

		switch identifier.Kind {
		case kindWine:
			var rec Record
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("invalid wine in line %q: %w", string(line), err)
			}
			records = append(records, rec)
		case kindNote:
			var n Note
			if err := json.Unmarshal(line, &n); err != nil {
				return nil, fmt.Errorf("invalid note in line %q: %w", string(line), err)
			}
			notes = append(notes, n)
		default:
			return nil, fmt.Errorf("unknown kind %q in line %q", identifier.Kind, string(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading cellar: %w", err)
	}
	return NewStoreFrom(records, notes)
}

// Load reads a JSONL cellar file. A missing file is an empty cellar.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open cellar file %q: %w", path, err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode cellar file %q: %w", path, err)
	}
	return s, nil
}

// Save writes the store to a JSONL file, replacing it atomically.
func Save(path string, s *Store) error {
	// Ensure the directory for the cellar file exists.
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create directory for cellar %q: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("error opening cellar file %q for writing: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := Encode(w, s); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing cellar file %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing cellar file %q: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
