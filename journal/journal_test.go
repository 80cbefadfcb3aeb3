package journal

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/num"
)

var t0 = time.Date(2026, 1, 24, 9, 30, 0, 0, time.UTC)

func fill(side ledger.Side, price, amount, fee string, at time.Time) ledger.Fill {
	return ledger.Fill{
		Time:   at,
		Side:   side,
		Price:  num.MustParse(price),
		Amount: num.MustParse(amount),
		Fee:    num.MustParse(fee),
	}
}

// closedLong returns a long position bought at 100 and sold at 110, 2 units.
func closedLong(t *testing.T) *ledger.Position {
	t.Helper()

	r := ledger.NewLiveRecord(ledger.WithName("acct"))
	_, err := r.RecordFill(fill(ledger.Buy, "100", "2", "0.2", t0))
	require.NoError(t, err)
	closed, err := r.RecordFill(fill(ledger.Sell, "110", "2", "0.4", t0.Add(time.Hour)))
	require.NoError(t, err)
	require.Len(t, closed, 1)
	return closed[0]
}

func samplePosition(t *testing.T) PositionRecord {
	t.Helper()
	return FromPosition("acct", closedLong(t))
}

func assertNum(t *testing.T, want string, got num.Num) {
	t.Helper()
	assert.True(t, num.MustParse(want).Equal(got), "want %s, got %s", want, got)
}

func TestFromPosition(t *testing.T) {
	t.Parallel()

	rec := samplePosition(t)
	assert.Len(t, rec.PositionID, 26)
	assert.Equal(t, "acct", rec.Record)
	assert.Equal(t, ledger.Buy, rec.Side)
	assertNum(t, "2", rec.Amount)
	assert.Equal(t, 0, rec.EntryIndex)
	assert.Equal(t, 1, rec.ExitIndex)
	assert.Equal(t, t0, rec.EntryTime)
	assert.Equal(t, t0.Add(time.Hour), rec.ExitTime)
	assertNum(t, "100", rec.EntryPrice)
	assertNum(t, "110", rec.ExitPrice)
	assertNum(t, "0.2", rec.EntryFee)
	assertNum(t, "0.4", rec.ExitFee)
	assertNum(t, "20", rec.GrossProfit)
	assertNum(t, "19.4", rec.NetProfit)
}

func TestExposureFromSnapshot(t *testing.T) {
	t.Parallel()

	r := ledger.NewLiveRecord(ledger.WithName("acct"))
	flat := ExposureFromSnapshot(t0, r.Snapshot())
	assert.True(t, flat.Amount.IsZero())
	assert.True(t, flat.AveragePrice.IsNaN())
	assert.Equal(t, 0, flat.Lots)

	_, err := r.RecordFill(fill(ledger.Buy, "100", "1", "0.1", t0))
	require.NoError(t, err)
	_, err = r.RecordFill(fill(ledger.Buy, "110", "1", "0.1", t0))
	require.NoError(t, err)

	e := ExposureFromSnapshot(t0, r.Snapshot())
	assert.Equal(t, "acct", e.Record)
	assert.Equal(t, uint64(2), e.Version)
	assertNum(t, "2", e.Amount)
	assertNum(t, "105", e.AveragePrice)
	assertNum(t, "0.2", e.Fees)
	assertNum(t, "0.2", e.TotalFees)
	assert.Equal(t, 2, e.Lots)
}

type failingJournal struct{ calls int }

func (f *failingJournal) RecordPosition(PositionRecord) error {
	f.calls++
	return errors.New("disk full")
}
func (f *failingJournal) RecordExposure(ExposureSnapshot) error { return nil }
func (f *failingJournal) Close() error                          { return nil }

func TestListener(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	j := &failingJournal{}
	r := ledger.NewLiveRecord(
		ledger.WithName("acct"),
		ledger.WithCloseListener(Listener(j, zerolog.New(&buf))),
	)
	_, err := r.RecordFill(fill(ledger.Buy, "10", "1", "0", t0))
	require.NoError(t, err)
	_, err = r.RecordFill(fill(ledger.Sell, "11", "1", "0", t0))
	require.NoError(t, err, "journal errors do not fail the fill")

	assert.Equal(t, 1, j.calls)
	assert.Contains(t, buf.String(), "disk full")
	assert.Contains(t, buf.String(), `"record":"acct"`)
}
