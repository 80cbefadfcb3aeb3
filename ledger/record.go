// Package ledger reconstructs closed positions and open exposure from a
// stream of executed trades or fills.
//
// Three ledgers share the Record interface: BaseRecord holds one position
// at a time, MultiRecord holds many independently opened positions, and
// LiveRecord matches fills against lots in a PositionBook and is safe for
// concurrent use.
package ledger

import (
	"github.com/rs/zerolog"

	"github.com/rustyeddy/ledger/num"
)

// Record is the read and operate surface shared by every ledger.
type Record interface {
	Name() string
	StartingSide() Side
	TransactionCostModel() CostModel
	HoldingCostModel() CostModel

	// Operate enters when nothing is open and exits otherwise.
	Operate(index int, price, amount num.Num) error
	// Enter and Exit report false, with no error, when there is nothing for
	// them to do.
	Enter(index int, price, amount num.Num) (bool, error)
	Exit(index int, price, amount num.Num) (bool, error)

	// Positions returns the closed positions.
	Positions() []*Position
	Trades() []*Trade
	CurrentPosition() *Position
	LastTrade() *Trade
	LastTradeOf(side Side) *Trade
	LastEntry() *Trade
	LastExit() *Trade
	// StartIndex and EndIndex report the analysis range, if one was set.
	StartIndex() (int, bool)
	EndIndex() (int, bool)
	// IsClosed reports whether no position is open.
	IsClosed() bool
}

// PriceSeries supplies a close price per bar index.
type PriceSeries interface {
	ClosePrice(index int) (num.Num, bool)
}

// LastPosition returns the most recently closed position of r, or nil.
func LastPosition(r Record) *Position {
	ps := r.Positions()
	if len(ps) == 0 {
		return nil
	}
	return ps[len(ps)-1]
}

// PositionClosedListener is told about every position a record closes.
// It is called without any ledger lock held.
type PositionClosedListener func(name string, p *Position)

type options struct {
	name         string
	startingSide Side
	transaction  CostModel
	holding      CostModel
	hasRange     bool
	start, end   int
	policy       MatchPolicy
	series       PriceSeries
	log          zerolog.Logger
	onClose      PositionClosedListener
}

// Option configures a record at construction.
type Option func(*options)

func buildOptions(opts []Option) options {
	o := options{
		startingSide: Buy,
		policy:       FIFO,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.holding = orZeroCost(o.holding)
	return o
}

func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithStartingSide sets the side entries are made on. Default Buy.
func WithStartingSide(side Side) Option {
	return func(o *options) { o.startingSide = side }
}

// WithCostModels sets the transaction and holding cost models. Nil means
// ZeroCost.
func WithCostModels(transaction, holding CostModel) Option {
	return func(o *options) {
		o.transaction = transaction
		o.holding = holding
	}
}

// WithRange records the bar range the ledger covers.
func WithRange(start, end int) Option {
	return func(o *options) {
		o.hasRange = true
		o.start, o.end = start, end
	}
}

// WithMatchPolicy sets how exits pick what to close. Default FIFO.
func WithMatchPolicy(p MatchPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithSeries gives the ledger close prices for OperateAt.
func WithSeries(s PriceSeries) Option {
	return func(o *options) { o.series = s }
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithCloseListener registers fn to be called for every closed position.
func WithCloseListener(fn PositionClosedListener) Option {
	return func(o *options) { o.onClose = fn }
}

func (o options) startIndex() (int, bool) { return o.start, o.hasRange }

func (o options) endIndex() (int, bool) { return o.end, o.hasRange }

// tradeLog keeps trades in arrival order with per-side and per-role views.
type tradeLog struct {
	all     []*Trade
	buys    []*Trade
	sells   []*Trade
	entries []*Trade
	exits   []*Trade
}

func (l *tradeLog) add(t *Trade, entry bool) {
	l.all = append(l.all, t)
	if t.IsBuy() {
		l.buys = append(l.buys, t)
	} else {
		l.sells = append(l.sells, t)
	}
	if entry {
		l.entries = append(l.entries, t)
	} else {
		l.exits = append(l.exits, t)
	}
}

func (l *tradeLog) last() *Trade { return lastOf(l.all) }

func (l *tradeLog) lastOf(side Side) *Trade {
	if side == Buy {
		return lastOf(l.buys)
	}
	return lastOf(l.sells)
}

func lastOf(ts []*Trade) *Trade {
	if len(ts) == 0 {
		return nil
	}
	return ts[len(ts)-1]
}
