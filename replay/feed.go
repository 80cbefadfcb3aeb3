package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/num"
)

// Row is one fill read from a fills file. Index is -1 when the file left it
// blank and Fill.Price is NaN when the price is to come from a bar series.
type Row struct {
	Line  int
	Index int
	Fill  ledger.Fill
}

// FillsFeed reads rows of
//
//	index,time,side,price,amount[,fee[,order_id[,correlation_id]]]
//
// A header row ("index,...") is allowed and empty rows are skipped.
type FillsFeed struct {
	f    io.Closer
	r    *csv.Reader
	line int
}

func NewFillsFeed(in io.Reader) *FillsFeed {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return &FillsFeed{r: r}
}

func OpenFillsFeed(path string) (*FillsFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	feed := NewFillsFeed(f)
	feed.f = f
	return feed, nil
}

func (f *FillsFeed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Next returns the next row, or false at end of input.
func (f *FillsFeed) Next() (Row, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return Row{}, false, nil
		}
		if err != nil {
			return Row{}, false, err
		}
		f.line++
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if f.line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "index") {
			continue
		}

		r, err := parseFillRow(row)
		if err != nil {
			return Row{}, false, fmt.Errorf("line %d: %w", f.line, err)
		}
		r.Line = f.line
		return r, true, nil
	}
}

func parseFillRow(row []string) (Row, error) {
	if len(row) < 5 {
		return Row{}, fmt.Errorf("need at least 5 cols index,time,side,price,amount: %v", row)
	}
	if len(row) > 8 {
		return Row{}, fmt.Errorf("too many columns (expected <=8): %v", row)
	}
	col := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	out := Row{Index: -1}
	if s := col(0); s != "" {
		i, err := strconv.Atoi(s)
		if err != nil {
			return Row{}, fmt.Errorf("bad index %q: %w", s, err)
		}
		out.Index = i
	}

	if s := col(1); s != "" {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return Row{}, fmt.Errorf("bad time %q: %w", s, err)
		}
		out.Fill.Time = t
	}

	side, err := ledger.ParseSide(col(2))
	if err != nil {
		return Row{}, err
	}
	out.Fill.Side = side

	out.Fill.Price = num.NaN()
	if s := col(3); s != "" {
		if out.Fill.Price, err = num.FromString(s); err != nil {
			return Row{}, fmt.Errorf("bad price: %w", err)
		}
	}
	if out.Fill.Amount, err = num.FromString(col(4)); err != nil {
		return Row{}, fmt.Errorf("bad amount: %w", err)
	}
	out.Fill.Fee = num.Zero()
	if s := col(5); s != "" {
		if out.Fill.Fee, err = num.FromString(s); err != nil {
			return Row{}, fmt.Errorf("bad fee: %w", err)
		}
	}
	out.Fill.OrderID = col(6)
	out.Fill.CorrelationID = col(7)
	return out, nil
}
