package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/ledger/num"
)

type closes map[int]num.Num

func (c closes) ClosePrice(index int) (num.Num, bool) {
	p, ok := c[index]
	return p, ok
}

func TestBaseRecord_EnterExit(t *testing.T) {
	t.Parallel()

	var closedNames []string
	r := NewBaseRecord(WithName("base"), WithCloseListener(func(name string, _ *Position) {
		closedNames = append(closedNames, name)
	}))

	ok, err := r.Exit(0, num.New(10), num.One())
	require.NoError(t, err)
	assert.False(t, ok, "exit with nothing open is a no-op")

	ok, err = r.Enter(1, num.New(10), num.One())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, r.IsClosed())

	ok, err = r.Enter(2, num.New(11), num.One())
	require.NoError(t, err)
	assert.False(t, ok, "enter while open is a no-op")

	ok, err = r.Exit(3, num.New(12), num.One())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, r.IsClosed())

	require.Len(t, r.Positions(), 1)
	assertNum(t, "2", LastPosition(r).Profit())
	assert.True(t, r.CurrentPosition().IsNew())
	assert.Len(t, r.Trades(), 2)
	assert.Equal(t, 1, r.LastEntry().Index())
	assert.Equal(t, 3, r.LastExit().Index())
	assert.Equal(t, 3, r.LastTrade().Index())
	assert.Equal(t, 1, r.LastTradeOf(Buy).Index())
	assert.Equal(t, []string{"base"}, closedNames)
}

func TestBaseRecord_Errors(t *testing.T) {
	t.Parallel()

	r := NewBaseRecord()
	require.NoError(t, r.Operate(5, num.New(10), num.One()))

	err := r.Operate(4, num.New(11), num.One())
	require.ErrorIs(t, err, ErrIllegalState)
	assert.True(t, r.CurrentPosition().IsOpened())
	assert.Len(t, r.Trades(), 1)

	_, err = r.Exit(6, num.New(11), num.Zero())
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, r.CurrentPosition().IsOpened())

	err = r.Operate(6, num.NaN(), num.One())
	require.ErrorIs(t, err, ErrInvalidInput, "no series to price from")
}

func TestBaseRecord_OperateAt(t *testing.T) {
	t.Parallel()

	series := closes{0: num.New(100), 1: num.New(104)}
	r := NewBaseRecord(WithSeries(series), WithRange(0, 1))

	require.NoError(t, r.OperateAt(0, num.One()))
	require.NoError(t, r.OperateAt(1, num.One()))
	require.Len(t, r.Positions(), 1)
	assertNum(t, "4", r.Positions()[0].GrossProfit())

	err := r.OperateAt(7, num.One())
	require.ErrorIs(t, err, ErrInvalidInput)

	start, ok := r.StartIndex()
	assert.True(t, ok)
	assert.Equal(t, 0, start)
	end, _ := r.EndIndex()
	assert.Equal(t, 1, end)
}

func TestNewBaseRecordFromTrades_SideReversal(t *testing.T) {
	t.Parallel()

	mk := func(index int, side Side, price int64) *Trade {
		tr, err := NewTrade(index, side, num.New(price), num.One(), nil)
		require.NoError(t, err)
		return tr
	}
	trades := []*Trade{
		mk(0, Buy, 10), mk(1, Sell, 12),
		mk(2, Sell, 20), mk(3, Buy, 15),
		mk(4, Buy, 30), mk(5, Sell, 31),
	}

	r, err := NewBaseRecordFromTrades(trades, WithName("rebuilt"))
	require.NoError(t, err)
	assert.Equal(t, Buy, r.StartingSide())

	ps := r.Positions()
	require.Len(t, ps, 3)
	assert.Equal(t, Buy, ps[0].Entry().Side())
	assert.Equal(t, Sell, ps[1].Entry().Side())
	assertNum(t, "5", ps[1].GrossProfit())
	assert.Equal(t, Buy, ps[2].Entry().Side())

	again, err := NewBaseRecordFromPositions(ps)
	require.NoError(t, err)
	require.Len(t, again.Positions(), 3)
	for i := range ps {
		assert.True(t, ps[i].Equal(again.Positions()[i]), "position %d", i)
	}
}

func TestMultiRecord_RejectsLotPolicies(t *testing.T) {
	t.Parallel()

	for _, p := range []MatchPolicy{AvgCost, SpecificID} {
		_, err := NewMultiRecord(WithMatchPolicy(p))
		require.ErrorIs(t, err, ErrInvalidInput, p.String())
	}
}

func TestMultiRecord_ExitSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		policy     MatchPolicy
		exitAmount string
		wantEntry  int
	}{
		{"fifo without exact match", FIFO, "1", 0},
		{"lifo without exact match", LIFO, "1", 2},
		{"exact amount beats fifo", FIFO, "3", 1},
		{"exact amount beats lifo", LIFO, "2", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, err := NewMultiRecord(WithMatchPolicy(tt.policy))
			require.NoError(t, err)
			for i, amt := range []string{"2", "3", "4"} {
				ok, err := r.Enter(i, num.New(10), num.MustParse(amt))
				require.NoError(t, err)
				require.True(t, ok)
			}
			ok, err := r.Exit(5, num.New(11), num.MustParse(tt.exitAmount))
			require.NoError(t, err)
			require.True(t, ok)
			require.Len(t, r.Positions(), 1)
			assert.Equal(t, tt.wantEntry, r.Positions()[0].Entry().Index())
		})
	}
}

func TestMultiRecord_PartialExit(t *testing.T) {
	t.Parallel()

	r, err := NewMultiRecord()
	require.NoError(t, err)
	_, err = r.Enter(0, num.New(10), num.New(5))
	require.NoError(t, err)
	_, err = r.Enter(1, num.New(12), num.New(7))
	require.NoError(t, err)

	ok, err := r.Exit(2, num.New(13), num.New(2))
	require.NoError(t, err)
	require.True(t, ok)

	closed := r.Positions()
	require.Len(t, closed, 1)
	assertNum(t, "2", closed[0].Entry().Amount())
	assertNum(t, "2", closed[0].Exit().Amount())
	assertNum(t, "6", closed[0].GrossProfit())

	open := r.OpenPositions()
	require.Len(t, open, 2)
	assert.Equal(t, 0, open[0].Entry().Index(), "remainder keeps its slot")
	assertNum(t, "3", open[0].Entry().Amount())
	assertNum(t, "10", open[0].Entry().Price())

	// conservation across both original entries
	total := closed[0].Exit().Amount()
	for _, p := range open {
		total = total.Add(p.Entry().Amount())
	}
	assertNum(t, "12", total)

	_, err = r.Exit(3, num.New(13), num.New(9))
	require.ErrorIs(t, err, ErrIllegalState)
	assert.Len(t, r.OpenPositions(), 2)

	assert.Equal(t, 1, r.OpenPositionsOrdered(LIFO)[0].Entry().Index())
	assert.Equal(t, 1, r.FindOpenPositionByAmount(num.New(7)).Entry().Index())
	assert.Nil(t, r.FindOpenPositionByAmount(num.New(4)))
}

func TestMultiRecord_Operate(t *testing.T) {
	t.Parallel()

	r, err := NewMultiRecord(WithStartingSide(Sell))
	require.NoError(t, err)
	assert.True(t, r.IsClosed())
	assert.True(t, r.CurrentPosition().IsNew())

	require.NoError(t, r.Operate(0, num.New(20), num.One()))
	assert.False(t, r.IsClosed())
	assert.Equal(t, Sell, r.CurrentPosition().Entry().Side())

	require.NoError(t, r.Operate(1, num.New(18), num.One()))
	assert.True(t, r.IsClosed())
	assertNum(t, "2", r.Positions()[0].GrossProfit())
	assert.Equal(t, Buy, r.LastExit().Side())

	ok, err := r.Exit(2, num.New(18), num.One())
	require.NoError(t, err)
	assert.False(t, ok)
}
