package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/num"
)

func closedPositions(t *testing.T) []*ledger.Position {
	t.Helper()

	r := ledger.NewBaseRecord(ledger.WithCostModels(ledger.NewFixedTransactionCost(num.MustParse("0.5")), nil))
	legs := []struct{ entry, exit int64 }{
		{100, 110}, // +10%
		{100, 95},  // -5%
		{200, 201}, // +0.5%, 1 gross, 0 net
		{50, 60},   // +20%
	}
	index := 0
	for _, l := range legs {
		require.NoError(t, r.Operate(index, num.New(l.entry), num.One()))
		require.NoError(t, r.Operate(index+1, num.New(l.exit), num.One()))
		index += 2
	}
	return r.Positions()
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(closedPositions(t))
	assert.Equal(t, 4, s.Positions)
	assert.Equal(t, 2, s.Winners)
	assert.Equal(t, 1, s.Losers)
	assert.True(t, num.New(16).Equal(s.GrossProfit), s.GrossProfit.String())
	assert.True(t, num.New(12).Equal(s.NetProfit), s.NetProfit.String())
	assert.True(t, num.New(4).Equal(s.Fees), s.Fees.String())
	assert.InDelta(t, 0.5, s.WinRate(), 1e-12)

	assert.InDelta(t, 0.06375, s.MeanReturn, 1e-12)
	assert.InDelta(t, 0.20, s.BestReturn, 1e-12)
	assert.InDelta(t, -0.05, s.WorstReturn, 1e-12)
	assert.InDelta(t, 0.005, s.MedianReturn, 1e-12)
	// sample standard deviation of {0.1, -0.05, 0.005, 0.2}
	assert.InDelta(t, 0.109953, s.StdDevReturn, 1e-6)
}

func TestSummarize_Edges(t *testing.T) {
	t.Parallel()

	empty := Summarize(nil)
	assert.Zero(t, empty.Positions)
	assert.Zero(t, empty.WinRate())
	assert.True(t, empty.NetProfit.IsZero())

	open := ledger.NewPosition(ledger.Buy, nil, nil)
	_, err := open.Operate(0, num.New(10), num.One())
	require.NoError(t, err)

	one := closedPositions(t)[:1]
	s := Summarize(append(one, open, nil))
	assert.Equal(t, 1, s.Positions)
	assert.Zero(t, s.StdDevReturn)
	assert.InDelta(t, 0.1, s.MeanReturn, 1e-12)
}

func TestSummary_Write(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Summarize(closedPositions(t)).Write(&buf))
	out := buf.String()
	assert.Contains(t, out, "positions      4\n")
	assert.Contains(t, out, "win rate       50.00%\n")
	assert.Contains(t, out, "net profit     12\n")
	assert.Contains(t, out, "best return    20.0000%\n")
}
