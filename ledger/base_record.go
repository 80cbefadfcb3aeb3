package ledger

import (
	"fmt"

	"github.com/rustyeddy/ledger/num"
)

// BaseRecord is the sequential ledger of a backtest: exactly one current
// position, replaced by a fresh one as soon as it closes.
type BaseRecord struct {
	opts      options
	current   *Position
	positions []*Position
	trades    tradeLog
}

var _ Record = (*BaseRecord)(nil)

func NewBaseRecord(opts ...Option) *BaseRecord {
	r := &BaseRecord{opts: buildOptions(opts)}
	r.opts.transaction = orZeroCost(r.opts.transaction)
	r.current = r.newPosition(r.opts.startingSide)
	return r
}

// NewBaseRecordFromTrades rebuilds a record by operating every trade in
// order. The side of the first trade becomes the starting side, and a
// position whose entry comes in on the other side is kept as entered, so
// BUY,SELL,SELL,BUY yields a long then a short position.
func NewBaseRecordFromTrades(trades []*Trade, opts ...Option) (*BaseRecord, error) {
	if len(trades) > 0 {
		opts = append(opts, WithStartingSide(trades[0].Side()))
	}
	r := NewBaseRecord(opts...)
	for _, t := range trades {
		if r.current.IsNew() && t.Side() != r.current.StartingSide() {
			r.current = r.newPosition(t.Side())
		}
		if err := r.Operate(t.Index(), t.Price(), t.Amount()); err != nil {
			return nil, fmt.Errorf("replay %v: %w", t, err)
		}
	}
	return r, nil
}

// NewBaseRecordFromPositions rebuilds a record from the legs of positions.
// Unless opts say otherwise it uses the cost models of the first position.
func NewBaseRecordFromPositions(positions []*Position, opts ...Option) (*BaseRecord, error) {
	var trades []*Trade
	for _, p := range positions {
		if p == nil || p.Entry() == nil {
			return nil, fmt.Errorf("%w: position without entry", ErrInvalidInput)
		}
		trades = append(trades, p.Entry())
		if p.Exit() != nil {
			trades = append(trades, p.Exit())
		}
	}
	if len(positions) > 0 {
		opts = append([]Option{WithCostModels(positions[0].TransactionCostModel(), positions[0].HoldingCostModel())}, opts...)
	}
	return NewBaseRecordFromTrades(trades, opts...)
}

func (r *BaseRecord) newPosition(side Side) *Position {
	return NewPosition(side, r.opts.transaction, r.opts.holding)
}

func (r *BaseRecord) Name() string { return r.opts.name }

func (r *BaseRecord) StartingSide() Side { return r.opts.startingSide }

func (r *BaseRecord) TransactionCostModel() CostModel { return r.opts.transaction }

func (r *BaseRecord) HoldingCostModel() CostModel { return r.opts.holding }

// Operate adds the next leg to the current position. A NaN price is
// replaced by the series close price at index when a series is set.
func (r *BaseRecord) Operate(index int, price, amount num.Num) error {
	if r.current.IsClosed() {
		return fmt.Errorf("%w: current position is closed", ErrIllegalState)
	}
	price, err := resolvePrice(r.opts.series, index, price)
	if err != nil {
		return err
	}
	entry := r.current.IsNew()
	t, err := r.current.Operate(index, price, amount)
	if err != nil {
		return err
	}
	r.trades.add(t, entry)
	if r.current.IsClosed() {
		closed := r.current
		r.positions = append(r.positions, closed)
		r.current = r.newPosition(r.opts.startingSide)
		r.opts.log.Debug().Int("index", index).Str("profit", closed.Profit().String()).Msg("position closed")
		if r.opts.onClose != nil {
			r.opts.onClose(r.opts.name, closed)
		}
	}
	return nil
}

// OperateAt is Operate at the series close price for index.
func (r *BaseRecord) OperateAt(index int, amount num.Num) error {
	return r.Operate(index, num.NaN(), amount)
}

func (r *BaseRecord) Enter(index int, price, amount num.Num) (bool, error) {
	if !r.current.IsNew() {
		return false, nil
	}
	if err := r.Operate(index, price, amount); err != nil {
		return false, err
	}
	return true, nil
}

func (r *BaseRecord) Exit(index int, price, amount num.Num) (bool, error) {
	if !r.current.IsOpened() {
		return false, nil
	}
	if err := r.Operate(index, price, amount); err != nil {
		return false, err
	}
	return true, nil
}

func (r *BaseRecord) Positions() []*Position {
	return append([]*Position(nil), r.positions...)
}

func (r *BaseRecord) Trades() []*Trade {
	return append([]*Trade(nil), r.trades.all...)
}

func (r *BaseRecord) CurrentPosition() *Position { return r.current }

func (r *BaseRecord) LastTrade() *Trade { return r.trades.last() }

func (r *BaseRecord) LastTradeOf(side Side) *Trade { return r.trades.lastOf(side) }

func (r *BaseRecord) LastEntry() *Trade { return lastOf(r.trades.entries) }

func (r *BaseRecord) LastExit() *Trade { return lastOf(r.trades.exits) }

func (r *BaseRecord) StartIndex() (int, bool) { return r.opts.startIndex() }

func (r *BaseRecord) EndIndex() (int, bool) { return r.opts.endIndex() }

func (r *BaseRecord) IsClosed() bool { return !r.current.IsOpened() }

func resolvePrice(series PriceSeries, index int, price num.Num) (num.Num, error) {
	if !price.IsNaN() {
		return price, nil
	}
	if series == nil {
		return price, fmt.Errorf("%w: no price given and no series to read one from", ErrInvalidInput)
	}
	p, ok := series.ClosePrice(index)
	if !ok || p.IsNaN() {
		return price, fmt.Errorf("%w: series has no close price at index %d", ErrInvalidInput, index)
	}
	return p, nil
}
