package ledger

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rustyeddy/ledger/num"
)

// LiveRecord records venue fills against a PositionBook. It is safe for
// concurrent use: writes are serialized, reads share a read lock.
//
// The transaction cost of a live record is always the recorded fee, so any
// transaction model passed with WithCostModels is ignored.
type LiveRecord struct {
	mu   sync.RWMutex
	opts options
	book *PositionBook

	nextIndex int
	seq       int64
	totalFees num.Num

	// version counts successful fills; the trade cache is valid for one
	// version.
	version  atomic.Uint64
	cache    tradeCache
	rebuilds atomic.Int64
}

var _ Record = (*LiveRecord)(nil)

func NewLiveRecord(opts ...Option) *LiveRecord {
	o := buildOptions(opts)
	o.transaction = RecordedTradeCost{}
	return &LiveRecord{
		opts:      o,
		book:      NewPositionBook(o.startingSide, o.policy, o.holding),
		totalFees: num.Zero(),
	}
}

func (r *LiveRecord) Name() string { return r.opts.name }

func (r *LiveRecord) StartingSide() Side { return r.opts.startingSide }

func (r *LiveRecord) MatchPolicy() MatchPolicy { return r.opts.policy }

func (r *LiveRecord) TransactionCostModel() CostModel { return r.opts.transaction }

func (r *LiveRecord) HoldingCostModel() CostModel { return r.opts.holding }

func (r *LiveRecord) StartIndex() (int, bool) { return r.opts.startIndex() }

func (r *LiveRecord) EndIndex() (int, bool) { return r.opts.endIndex() }

// RecordFill records fill at the next free index and returns the positions
// it closed.
func (r *LiveRecord) RecordFill(fill Fill) ([]*Position, error) {
	r.mu.Lock()
	closed, err := r.recordFillLocked(r.nextIndex, fill)
	r.mu.Unlock()
	r.notify(closed)
	return closed, err
}

// RecordFillAt records fill at index. Fills on the starting side open lots,
// fills on the other side close them. A rejected fill leaves the record
// unchanged.
func (r *LiveRecord) RecordFillAt(index int, fill Fill) ([]*Position, error) {
	r.mu.Lock()
	closed, err := r.recordFillLocked(index, fill)
	r.mu.Unlock()
	r.notify(closed)
	return closed, err
}

// RecordTrade records a pre-built trade as a fill, its cost as the fee.
func (r *LiveRecord) RecordTrade(t *Trade) ([]*Position, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil trade", ErrInvalidInput)
	}
	return r.RecordFillAt(t.Index(), Fill{
		Time:          t.Time(),
		Side:          t.Side(),
		Price:         t.Price(),
		Amount:        t.Amount(),
		Fee:           t.Cost(),
		OrderID:       t.OrderID(),
		CorrelationID: t.CorrelationID(),
	})
}

// recordFillLocked requires r.mu held for writing.
func (r *LiveRecord) recordFillLocked(index int, fill Fill) ([]*Position, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: fill index must not be negative, got %d", ErrInvalidInput, index)
	}
	if err := fill.Validate(); err != nil {
		return nil, err
	}

	seq := r.seq + 1
	var (
		closed []*Position
		err    error
	)
	if fill.Side == r.opts.startingSide {
		err = r.book.RecordEntry(index, fill, seq)
	} else {
		closed, err = r.book.RecordExit(index, fill, seq)
	}
	if err != nil {
		return nil, err
	}

	r.seq = seq
	r.nextIndex = max(r.nextIndex, index+1)
	r.totalFees = r.totalFees.Add(fill.Fee)
	r.version.Add(1)
	r.opts.log.Debug().
		Str("side", fill.Side.String()).
		Int("index", index).
		Str("price", fill.Price.String()).
		Str("amount", fill.Amount.String()).
		Int("closed", len(closed)).
		Msg("fill recorded")
	return closed, nil
}

func (r *LiveRecord) notify(closed []*Position) {
	if r.opts.onClose == nil {
		return
	}
	for _, p := range closed {
		r.opts.onClose(r.opts.name, p)
	}
}

// Operate records a fee-free fill: an entry when nothing is open, an exit
// otherwise.
func (r *LiveRecord) Operate(index int, price, amount num.Num) error {
	r.mu.Lock()
	side := r.opts.startingSide
	if len(r.book.lots) > 0 {
		side = side.Complement()
	}
	closed, err := r.recordFillLocked(index, Fill{Side: side, Price: price, Amount: amount})
	r.mu.Unlock()
	r.notify(closed)
	return err
}

// Enter records a fee-free entry fill if nothing is open.
func (r *LiveRecord) Enter(index int, price, amount num.Num) (bool, error) {
	r.mu.Lock()
	if len(r.book.lots) > 0 {
		r.mu.Unlock()
		return false, nil
	}
	_, err := r.recordFillLocked(index, Fill{Side: r.opts.startingSide, Price: price, Amount: amount})
	r.mu.Unlock()
	return err == nil, err
}

// Exit records a fee-free exit fill if anything is open.
func (r *LiveRecord) Exit(index int, price, amount num.Num) (bool, error) {
	r.mu.Lock()
	if len(r.book.lots) == 0 {
		r.mu.Unlock()
		return false, nil
	}
	closed, err := r.recordFillLocked(index, Fill{Side: r.opts.startingSide.Complement(), Price: price, Amount: amount})
	r.mu.Unlock()
	r.notify(closed)
	return err == nil, err
}

// Positions returns the closed positions in closing order.
func (r *LiveRecord) Positions() []*Position {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.book.ClosedPositions()
}

// OpenPositions returns one view per open lot.
func (r *LiveRecord) OpenPositions() []OpenPosition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.book.OpenPositions()
}

func (r *LiveRecord) OpenLots() []PositionLot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.book.OpenLots()
}

// NetOpenPosition aggregates all open lots; false when nothing is open.
func (r *LiveRecord) NetOpenPosition() (OpenPosition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.book.NetOpenPosition()
}

// TotalFees is the sum of the fees of every recorded fill.
func (r *LiveRecord) TotalFees() num.Num {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totalFees
}

// CurrentPosition folds the open exposure into a single opened position at
// the average entry price. With nothing open it returns a new position.
func (r *LiveRecord) CurrentPosition() *Position {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := NewPosition(r.opts.startingSide, r.opts.transaction, r.opts.holding)
	net, ok := r.book.NetOpenPosition()
	if !ok {
		return p
	}
	first := net.Lots[0].EntryIndex
	for _, lot := range net.Lots[1:] {
		first = min(first, lot.EntryIndex)
	}
	p.entry = newRecordedTrade(first, net.EarliestEntry, r.opts.startingSide, net.AveragePrice, net.Amount, net.Fees, "", "")
	return p
}

func (r *LiveRecord) IsClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.book.lots) == 0
}

// Trades returns both legs of every closed position plus one entry per open
// lot, ordered by index. The list is rebuilt at most once per fill.
func (r *LiveRecord) Trades() []*Trade {
	r.mu.RLock()
	if trades, ok := r.cache.get(r.version.Load()); ok {
		r.mu.RUnlock()
		return trades
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tradesLocked()
}

// tradesLocked requires r.mu held for writing.
func (r *LiveRecord) tradesLocked() []*Trade {
	v := r.version.Load()
	if trades, ok := r.cache.get(v); ok {
		return trades
	}
	r.cache.put(v, r.book.Trades())
	r.rebuilds.Add(1)
	trades, _ := r.cache.get(v)
	return trades
}

func (r *LiveRecord) LastTrade() *Trade {
	return lastOf(r.Trades())
}

func (r *LiveRecord) LastTradeOf(side Side) *Trade {
	trades := r.Trades()
	for i := len(trades) - 1; i >= 0; i-- {
		if trades[i].Side() == side {
			return trades[i]
		}
	}
	return nil
}

func (r *LiveRecord) LastEntry() *Trade { return r.LastTradeOf(r.opts.startingSide) }

func (r *LiveRecord) LastExit() *Trade { return r.LastTradeOf(r.opts.startingSide.Complement()) }

// Snapshot captures every view of the record under one read lock.
func (r *LiveRecord) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v := r.version.Load()
	trades, ok := r.cache.get(v)
	if !ok {
		trades = r.book.Trades()
	}
	net, hasOpen := r.book.NetOpenPosition()
	return Snapshot{
		Name:          r.opts.name,
		Version:       v,
		Positions:     r.book.ClosedPositions(),
		OpenPositions: r.book.OpenPositions(),
		NetOpen:       net,
		HasOpen:       hasOpen,
		Trades:        trades,
		TotalFees:     r.totalFees,
	}
}

func (r *LiveRecord) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fmt.Sprintf("LiveRecord{name=%q side=%s policy=%s open=%d closed=%d fees=%s}",
		r.opts.name, r.opts.startingSide, r.opts.policy, len(r.book.lots), len(r.book.closed), r.totalFees)
}
