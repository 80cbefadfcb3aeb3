package ledger

import (
	"slices"

	"github.com/rustyeddy/ledger/num"
)

// Snapshot is a consistent point-in-time copy of a LiveRecord.
type Snapshot struct {
	Name          string
	Version       uint64
	Positions     []*Position
	OpenPositions []OpenPosition
	// NetOpen is meaningful only when HasOpen is true.
	NetOpen   OpenPosition
	HasOpen   bool
	Trades    []*Trade
	TotalFees num.Num
}

// tradeCache holds the derived trade list for one record version.
type tradeCache struct {
	trades  []*Trade
	version uint64
	valid   bool
}

// get returns a copy of the cached trades if they were built at version.
func (c *tradeCache) get(version uint64) ([]*Trade, bool) {
	if !c.valid || c.version != version {
		return nil, false
	}
	return slices.Clone(c.trades), true
}

func (c *tradeCache) put(version uint64, trades []*Trade) {
	c.trades = trades
	c.version = version
	c.valid = true
}
