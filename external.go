package cellar

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/cellar/date"
	"github.com/shopspring/decimal"
)

// ExternalEntry is one wine of the external transaction ledger, as scraped from
// the third party cellar site. It is read only.
type ExternalEntry struct {
	Name         string // e.g. "2016 Barolo (750ml) RATED"
	Acquisitions []AcquisitionEvent
	Consumptions []ConsumptionEvent
	Acquired     int // bottles acquired in total
	InCellar     int // bottles currently held
	Consumed     int // bottles consumed in total

	BadDates int   // number of events whose date could not be parsed
	Err      error // non nil for a malformed entry, which reconciliation skips
}

// AcquisitionEvent is a purchase in the external ledger.
type AcquisitionEvent struct {
	Date  date.Date // zero when unknown
	Price decimal.Decimal
	From  string
}

// ConsumptionEvent is a consumption in the external ledger.
type ConsumptionEvent struct {
	Date     date.Date // zero when unknown
	Quantity int
}

// earliestAcquisition returns the acquisition event with the earliest known
// date, or the first one if no date is known.
func (e ExternalEntry) earliestAcquisition() (AcquisitionEvent, bool) {
	if len(e.Acquisitions) == 0 {
		return AcquisitionEvent{}, false
	}
	best := e.Acquisitions[0]
	for _, evt := range e.Acquisitions[1:] {
		if evt.Date.IsZero() {
			continue
		}
		if best.Date.IsZero() || evt.Date.Before(best.Date) {
			best = evt
		}
	}
	return best, true
}

/*
DecodeExternalLedger reads the scraped ledger. It is a JSON array (or a JSONL
stream) of objects like:

	{
	    "wine_name": "2015 Almaviva (Proprietary Blend) (750ml) RATED",
	    "acq_events": [{"date": "February 22, 2013", "price": 95.0, "from": "Wine.com\nOnline"}],
	    "consumed_events": [{"date": "May 1, 2024", "quantity": 1}],
	    "acquired": 3,
	    "in_cellar": 2,
	    "consumed": 1
	}

The scraper output is loose: prices may be strings like "$1,095.00", counters may
be missing or strings, and failed pages carry an "error" property. Entries that
cannot be read are returned with Err set rather than failing the whole ledger.
*/
func DecodeExternalLedger(r io.Reader) ([]ExternalEntry, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read ledger: %w", err)
	}
	content = bytes.TrimSpace(content)

	var objects []any
	if len(content) > 0 && content[0] == '[' {
		if err := json.Unmarshal(content, &objects); err != nil {
			return nil, fmt.Errorf("ledger is not a valid json array: %w", err)
		}
	} else {
		scanner := bufio.NewScanner(bytes.NewReader(content))
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var obj any
			if err := json.Unmarshal(line, &obj); err != nil {
				return nil, fmt.Errorf("ledger line %q is not valid json: %w", string(line), err)
			}
			objects = append(objects, obj)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("cannot read ledger: %w", err)
		}
	}

	entries := make([]ExternalEntry, 0, len(objects))
	for i, obj := range objects {
		e := decodeEntry(obj)
		if e.Err != nil {
			e.Err = fmt.Errorf("entry %d: %w", i, e.Err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeEntry(obj any) (e ExternalEntry) {
	if _, ok := obj.(map[string]any); !ok {
		e.Err = fmt.Errorf("%w: not an object", ErrMalformedEntry)
		return e
	}
	e.Name = strings.TrimSpace(jtext("$.wine_name", obj))
	if msg, ok := jget("$.error", obj); ok {
		e.Err = fmt.Errorf("%w: scraper error %v", ErrMalformedEntry, msg)
		return e
	}
	if e.Name == "" {
		e.Err = fmt.Errorf("%w: missing wine_name", ErrMalformedEntry)
		return e
	}

	var err error
	if e.Acquired, err = jint("$.acquired", obj, 0); err != nil {
		e.Err = fmt.Errorf("%w: %q: acquired: %v", ErrMalformedEntry, e.Name, err)
		return e
	}
	if e.InCellar, err = jint("$.in_cellar", obj, 0); err != nil {
		e.Err = fmt.Errorf("%w: %q: in_cellar: %v", ErrMalformedEntry, e.Name, err)
		return e
	}
	if e.Consumed, err = jint("$.consumed", obj, 0); err != nil {
		e.Err = fmt.Errorf("%w: %q: consumed: %v", ErrMalformedEntry, e.Name, err)
		return e
	}

	for _, evt := range jlist("$.acq_events", obj) {
		a := AcquisitionEvent{From: firstLine(jtext("$.from", evt))}
		a.Date, err = jdate(evt)
		if err != nil {
			e.BadDates++
		}
		if v, ok := jget("$.price", evt); ok {
			if a.Price, err = parsePrice(v); err != nil {
				e.Err = fmt.Errorf("%w: %q: price: %v", ErrMalformedEntry, e.Name, err)
				return e
			}
		}
		e.Acquisitions = append(e.Acquisitions, a)
	}
	for _, evt := range jlist("$.consumed_events", obj) {
		c := ConsumptionEvent{}
		c.Date, err = jdate(evt)
		if err != nil {
			e.BadDates++
		}
		if c.Quantity, err = jint("$.quantity", evt, 1); err != nil || c.Quantity <= 0 {
			e.Err = fmt.Errorf("%w: %q: consumption quantity %v", ErrMalformedEntry, e.Name, err)
			return e
		}
		e.Consumptions = append(e.Consumptions, c)
	}
	return e
}

// jget returns the value at path, if it exists and is not null.
func jget(path string, obj any) (any, bool) {
	v, err := jsonpath.Get(path, obj)
	if err != nil || v == nil {
		return nil, false
	}
	// paths with an index or a filter return a list, the entry fields hold one value.
	if list, ok := v.([]any); ok && strings.Contains(path, "[") {
		if len(list) == 0 {
			return nil, false
		}
		v = list[0]
	}
	return v, true
}

func jtext(path string, obj any) string {
	v, ok := jget(path, obj)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func jlist(path string, obj any) []any {
	v, ok := jget(path, obj)
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

// jint reads an integer that may have been scraped as a number or a string.
func jint(path string, obj any, missing int) (int, error) {
	v, ok := jget(path, obj)
	if !ok {
		return missing, nil
	}
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || t < 0 {
			return 0, fmt.Errorf("%v is not a count", t)
		}
		return int(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return missing, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%q is not a count", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}

// jdate reads the "date" property of an event. A missing date is not an error.
func jdate(evt any) (date.Date, error) {
	s := strings.TrimSpace(jtext("$.date", evt))
	if s == "" {
		return date.Date{}, nil
	}
	return date.ParseLong(s)
}

// parsePrice reads 95, "95.00" or "$1,095.00".
func parsePrice(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), nil
	case string:
		s := strings.NewReplacer("$", "", ",", "", "€", "", "£", "").Replace(strings.TrimSpace(t))
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, fmt.Errorf("unexpected %T", v)
	}
}

func firstLine(s string) string {
	first, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(first)
}
