// Package series holds the bar data a ledger prices against when a caller
// does not supply an explicit price.
package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/ledger/num"
)

// Bar is one OHLCV bar.
type Bar struct {
	Time   time.Time
	Open   num.Num
	High   num.Num
	Low    num.Num
	Close  num.Num
	Volume num.Num
}

// Series is an in-memory bar series indexed from zero.
type Series struct {
	Name string
	Bars []Bar
}

// ClosePrice returns the close of the bar at index.
func (s *Series) ClosePrice(index int) (num.Num, bool) {
	if s == nil || index < 0 || index >= len(s.Bars) {
		return num.NaN(), false
	}
	return s.Bars[index].Close, true
}

func (s *Series) Len() int { return len(s.Bars) }

// IndexAt returns the index of the last bar starting at or before t.
func (s *Series) IndexAt(t time.Time) (int, bool) {
	idx := -1
	for i, b := range s.Bars {
		if b.Time.After(t) {
			break
		}
		idx = i
	}
	return idx, idx >= 0
}

// LoadCSV reads bars from path. See ReadCSV for the format.
func LoadCSV(path string, from, to time.Time) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ReadCSV(f, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Name = path
	return s, nil
}

// ReadCSV reads rows of
//
//	time,open,high,low,close[,volume]
//
// where time is RFC3339 or RFC3339Nano. A header row ("time,...") is
// allowed and empty rows are skipped. Bars outside [from, to) are dropped
// when from or to are set.
func ReadCSV(in io.Reader, from, to time.Time) (*Series, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	s := &Series{}
	rows := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return nil, err
		}
		rows++
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if rows == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}

		b, err := parseBarRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rows, err)
		}
		if !inRange(b.Time, from, to) {
			continue
		}
		s.Bars = append(s.Bars, b)
	}
}

func parseBarRow(row []string) (Bar, error) {
	if len(row) < 5 {
		return Bar{}, fmt.Errorf("need at least 5 cols time,open,high,low,close: %v", row)
	}

	ts := strings.TrimSpace(row[0])
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return Bar{}, fmt.Errorf("bad time %q: %w", ts, err)
		}
		t = t2
	}

	b := Bar{Time: t, Volume: num.Zero()}
	fields := []struct {
		name string
		dst  *num.Num
	}{
		{"open", &b.Open},
		{"high", &b.High},
		{"low", &b.Low},
		{"close", &b.Close},
	}
	for i, f := range fields {
		v, err := num.FromString(row[i+1])
		if err != nil {
			return Bar{}, fmt.Errorf("bad %s: %w", f.name, err)
		}
		*f.dst = v
	}
	if len(row) >= 6 && strings.TrimSpace(row[5]) != "" {
		v, err := num.FromString(row[5])
		if err != nil {
			return Bar{}, fmt.Errorf("bad volume: %w", err)
		}
		b.Volume = v
	}
	return b, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
