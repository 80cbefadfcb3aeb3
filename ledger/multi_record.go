package ledger

import (
	"fmt"
	"slices"

	"github.com/rustyeddy/ledger/num"
)

// MultiRecord keeps any number of independently opened positions. Every
// entry opens a new position; every exit closes one of them.
//
// An exit first looks for an open position whose entry amount equals the
// exit amount, searching in match policy order. Without one it takes the
// oldest (FIFO) or newest (LIFO) open position. Exiting less than the
// matched entry amount closes that much and leaves the rest open as a new
// position in the same slot, at the same entry index and price.
type MultiRecord struct {
	opts      options
	open      []*Position
	closed    []*Position
	trades    tradeLog
	nextEntry *Position
}

var _ Record = (*MultiRecord)(nil)

// NewMultiRecord accepts FIFO and LIFO match policies only.
func NewMultiRecord(opts ...Option) (*MultiRecord, error) {
	o := buildOptions(opts)
	if o.policy != FIFO && o.policy != LIFO {
		return nil, fmt.Errorf("%w: multi record supports FIFO and LIFO, not %s", ErrInvalidInput, o.policy)
	}
	o.transaction = orZeroCost(o.transaction)
	r := &MultiRecord{opts: o}
	r.nextEntry = r.newPosition()
	return r, nil
}

func (r *MultiRecord) newPosition() *Position {
	return NewPosition(r.opts.startingSide, r.opts.transaction, r.opts.holding)
}

func (r *MultiRecord) Name() string { return r.opts.name }

func (r *MultiRecord) StartingSide() Side { return r.opts.startingSide }

func (r *MultiRecord) MatchPolicy() MatchPolicy { return r.opts.policy }

func (r *MultiRecord) TransactionCostModel() CostModel { return r.opts.transaction }

func (r *MultiRecord) HoldingCostModel() CostModel { return r.opts.holding }

// Operate enters when nothing is open and exits otherwise.
func (r *MultiRecord) Operate(index int, price, amount num.Num) error {
	var err error
	if len(r.open) == 0 {
		_, err = r.Enter(index, price, amount)
	} else {
		_, err = r.Exit(index, price, amount)
	}
	return err
}

// OperateAt is Operate at the series close price for index.
func (r *MultiRecord) OperateAt(index int, amount num.Num) error {
	return r.Operate(index, num.NaN(), amount)
}

// Enter always opens a new position.
func (r *MultiRecord) Enter(index int, price, amount num.Num) (bool, error) {
	price, err := resolvePrice(r.opts.series, index, price)
	if err != nil {
		return false, err
	}
	p := r.nextEntry
	t, err := p.Operate(index, price, amount)
	if err != nil {
		return false, err
	}
	r.trades.add(t, true)
	r.open = append(r.open, p)
	r.nextEntry = r.newPosition()
	return true, nil
}

// Exit closes amount of one open position. It reports false when nothing
// is open. Exiting more than the chosen position holds is an error.
func (r *MultiRecord) Exit(index int, price, amount num.Num) (bool, error) {
	i := r.selectOpen(amount)
	if i < 0 {
		return false, nil
	}
	price, err := resolvePrice(r.opts.series, index, price)
	if err != nil {
		return false, err
	}
	if amount.IsNaN() || !amount.IsPositive() {
		return false, fmt.Errorf("%w: exit amount must be positive, got %s", ErrInvalidInput, amount)
	}

	matched := r.open[i]
	entry := matched.Entry()
	if amount.GreaterThan(entry.Amount()) {
		return false, fmt.Errorf("%w: exit amount %s exceeds open amount %s", ErrIllegalState, amount, entry.Amount())
	}

	toClose := matched
	var rest *Position
	if amount.LessThan(entry.Amount()) {
		if toClose, err = r.openedAt(entry, amount); err != nil {
			return false, err
		}
		if rest, err = r.openedAt(entry, entry.Amount().Sub(amount)); err != nil {
			return false, err
		}
	}
	t, err := toClose.Operate(index, price, amount)
	if err != nil {
		return false, err
	}

	r.trades.add(t, false)
	if rest != nil {
		r.open[i] = rest
	} else {
		r.open = slices.Delete(r.open, i, i+1)
	}
	r.closed = append(r.closed, toClose)
	r.opts.log.Debug().Int("index", index).Str("amount", amount.String()).Bool("partial", rest != nil).Msg("position closed")
	if r.opts.onClose != nil {
		r.opts.onClose(r.opts.name, toClose)
	}
	return true, nil
}

// openedAt opens a position that repeats entry for a different amount.
func (r *MultiRecord) openedAt(entry *Trade, amount num.Num) (*Position, error) {
	p := NewPosition(entry.Side(), r.opts.transaction, r.opts.holding)
	if _, err := p.Operate(entry.Index(), entry.Price(), amount); err != nil {
		return nil, err
	}
	return p, nil
}

// selectOpen returns the slot of the position an exit of amount closes,
// or -1 when nothing is open.
func (r *MultiRecord) selectOpen(amount num.Num) int {
	if len(r.open) == 0 {
		return -1
	}
	if i := r.indexByAmount(amount); i >= 0 {
		return i
	}
	if r.opts.policy == LIFO {
		return len(r.open) - 1
	}
	return 0
}

func (r *MultiRecord) indexByAmount(amount num.Num) int {
	if amount.IsNaN() {
		return -1
	}
	n := len(r.open)
	for k := range n {
		i := k
		if r.opts.policy == LIFO {
			i = n - 1 - k
		}
		if r.open[i].Entry().Amount().Equal(amount) {
			return i
		}
	}
	return -1
}

// FindOpenPositionByAmount returns the first open position, in match
// policy order, whose entry amount equals amount.
func (r *MultiRecord) FindOpenPositionByAmount(amount num.Num) *Position {
	if i := r.indexByAmount(amount); i >= 0 {
		return r.open[i]
	}
	return nil
}

// OpenPositions returns the open positions oldest first.
func (r *MultiRecord) OpenPositions() []*Position {
	return slices.Clone(r.open)
}

// OpenPositionsOrdered returns the open positions in the order policy
// would close them.
func (r *MultiRecord) OpenPositionsOrdered(policy MatchPolicy) []*Position {
	out := slices.Clone(r.open)
	if policy == LIFO {
		slices.Reverse(out)
	}
	return out
}

func (r *MultiRecord) Positions() []*Position { return slices.Clone(r.closed) }

func (r *MultiRecord) Trades() []*Trade { return slices.Clone(r.trades.all) }

// CurrentPosition is the newest open position, or the empty position the
// next entry will fill.
func (r *MultiRecord) CurrentPosition() *Position {
	if n := len(r.open); n > 0 {
		return r.open[n-1]
	}
	return r.nextEntry
}

func (r *MultiRecord) LastTrade() *Trade { return r.trades.last() }

func (r *MultiRecord) LastTradeOf(side Side) *Trade { return r.trades.lastOf(side) }

func (r *MultiRecord) LastEntry() *Trade { return lastOf(r.trades.entries) }

func (r *MultiRecord) LastExit() *Trade { return lastOf(r.trades.exits) }

func (r *MultiRecord) StartIndex() (int, bool) { return r.opts.startIndex() }

func (r *MultiRecord) EndIndex() (int, bool) { return r.opts.endIndex() }

func (r *MultiRecord) IsClosed() bool { return len(r.open) == 0 }
