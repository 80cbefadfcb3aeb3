package ledger

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/rustyeddy/ledger/num"
)

// OpenPosition is a read-only view of open exposure: one lot, or the
// aggregate of all lots for the net position.
type OpenPosition struct {
	Side          Side
	Amount        num.Num
	AveragePrice  num.Num
	TotalCost     num.Num // AveragePrice * Amount, fees excluded
	Fees          num.Num
	EarliestEntry time.Time
	LatestEntry   time.Time
	Lots          []PositionLot
}

type closedPosition struct {
	position *Position
	entrySeq int64
	exitSeq  int64
}

// PositionBook matches exit fills against open lots under one MatchPolicy
// and keeps the positions those exits closed.
//
// Every closed position is built from recorded legs, so the transaction
// cost model of a book is always RecordedTradeCost.
//
// A PositionBook is not safe for concurrent use; LiveRecord guards it.
type PositionBook struct {
	startingSide Side
	policy       MatchPolicy
	holdingCost  CostModel
	lots         []PositionLot
	closed       []closedPosition
}

// NewPositionBook returns an empty book whose entries are on startingSide.
func NewPositionBook(startingSide Side, policy MatchPolicy, holding CostModel) *PositionBook {
	return &PositionBook{
		startingSide: startingSide,
		policy:       policy,
		holdingCost:  orZeroCost(holding),
	}
}

func (b *PositionBook) StartingSide() Side { return b.startingSide }

func (b *PositionBook) MatchPolicy() MatchPolicy { return b.policy }

func (b *PositionBook) TransactionCostModel() CostModel { return RecordedTradeCost{} }

func (b *PositionBook) HoldingCostModel() CostModel { return b.holdingCost }

// RecordEntry opens a lot for fill at index. Under AVG_COST the open lots
// are merged first and the new lot is merged into the result.
func (b *PositionBook) RecordEntry(index int, fill Fill, seq int64) error {
	if err := b.checkFill(fill, b.startingSide); err != nil {
		return err
	}
	lot := PositionLot{
		EntryIndex:    index,
		EntryTime:     fill.Time,
		EntryPrice:    fill.Price,
		Amount:        fill.Amount,
		Fee:           fill.Fee,
		OrderID:       fill.OrderID,
		CorrelationID: fill.CorrelationID,
		seq:           seq,
	}
	if b.policy == AvgCost {
		b.lots = normalizeLots(b.lots)
		if len(b.lots) > 0 {
			b.lots[0] = b.lots[0].Merge(lot)
			return nil
		}
	}
	b.lots = append(b.lots, lot)
	return nil
}

// RecordExit closes open lots until the fill amount is used up and returns
// one closed position per lot touched. Fees are prorated by the amount each
// lot contributes. On error the book is left unchanged.
func (b *PositionBook) RecordExit(index int, fill Fill, seq int64) ([]*Position, error) {
	if err := b.checkFill(fill, b.startingSide.Complement()); err != nil {
		return nil, err
	}

	// match on a working copy and commit only when the whole fill fits
	lots := slices.Clone(b.lots)
	if b.policy == AvgCost {
		lots = normalizeLots(lots)
	}

	var (
		remaining    = fill.Amount
		remainingFee = fill.Fee
		closed       []closedPosition
	)
	for remaining.IsPositive() {
		i, err := nextLot(b.policy, lots, fill)
		if err != nil {
			return nil, err
		}
		lot := lots[i]
		if b.policy == SpecificID && remaining.GreaterThan(lot.Amount) {
			return nil, fmt.Errorf("%w: exit amount %s exceeds lot %q amount %s",
				ErrIllegalState, remaining, fill.matchKey(), lot.Amount)
		}

		closeAmount := remaining.Min(lot.Amount)
		exitFee := remainingFee
		if !closeAmount.Equal(remaining) {
			exitFee = remainingFee.Mul(closeAmount).Div(remaining)
		}
		entryFee := lot.Fee
		if closeAmount.Equal(lot.Amount) {
			lots = slices.Delete(lots, i, i+1)
		} else {
			entryFee = lot.Fee.Mul(closeAmount).Div(lot.Amount)
			lots[i] = lot.Reduce(closeAmount, entryFee)
		}

		p, err := b.closeLot(lot, index, fill, closeAmount, entryFee, exitFee)
		if err != nil {
			return nil, err
		}
		closed = append(closed, closedPosition{position: p, entrySeq: lot.seq, exitSeq: seq})
		remaining = remaining.Sub(closeAmount)
		remainingFee = remainingFee.Sub(exitFee)
	}

	b.lots = lots
	b.closed = append(b.closed, closed...)
	out := make([]*Position, len(closed))
	for i, c := range closed {
		out[i] = c.position
	}
	return out, nil
}

func (b *PositionBook) checkFill(fill Fill, want Side) error {
	if err := fill.Validate(); err != nil {
		return err
	}
	if fill.Side != want {
		return fmt.Errorf("%w: expected a %s fill, got %s", ErrInvalidInput, want, fill.Side)
	}
	return nil
}

func (b *PositionBook) closeLot(lot PositionLot, index int, fill Fill, amount, entryFee, exitFee num.Num) (*Position, error) {
	entry := newRecordedTrade(lot.EntryIndex, lot.EntryTime, b.startingSide, lot.EntryPrice, amount, entryFee,
		lot.OrderID, lot.CorrelationID)
	exit := newRecordedTrade(index, fill.Time, fill.Side, fill.Price, amount, exitFee,
		fill.OrderID, fill.CorrelationID)
	return NewClosedPosition(entry, exit, RecordedTradeCost{}, b.holdingCost)
}

func normalizeLots(lots []PositionLot) []PositionLot {
	if len(lots) <= 1 {
		return lots
	}
	merged := lots[0]
	for _, lot := range lots[1:] {
		merged = merged.Merge(lot)
	}
	return []PositionLot{merged}
}

// OpenLots returns a copy of the open lots in queue order.
func (b *PositionBook) OpenLots() []PositionLot {
	return slices.Clone(b.lots)
}

// OpenAmount is the total amount still open.
func (b *PositionBook) OpenAmount() num.Num {
	total := num.Zero()
	for _, lot := range b.lots {
		total = total.Add(lot.Amount)
	}
	return total
}

// ClosedPositions returns the closed positions in the order they closed.
func (b *PositionBook) ClosedPositions() []*Position {
	out := make([]*Position, len(b.closed))
	for i, c := range b.closed {
		out[i] = c.position
	}
	return out
}

// OpenPositions returns one view per open lot.
func (b *PositionBook) OpenPositions() []OpenPosition {
	out := make([]OpenPosition, 0, len(b.lots))
	for _, lot := range b.lots {
		out = append(out, OpenPosition{
			Side:          b.startingSide,
			Amount:        lot.Amount,
			AveragePrice:  lot.EntryPrice,
			TotalCost:     lot.Value(),
			Fees:          lot.Fee,
			EarliestEntry: lot.EntryTime,
			LatestEntry:   lot.EntryTime,
			Lots:          []PositionLot{lot},
		})
	}
	return out
}

// NetOpenPosition aggregates every open lot into one exposure. It reports
// false when nothing is open.
func (b *PositionBook) NetOpenPosition() (OpenPosition, bool) {
	if len(b.lots) == 0 {
		return OpenPosition{}, false
	}
	net := OpenPosition{
		Side:      b.startingSide,
		Amount:    num.Zero(),
		TotalCost: num.Zero(),
		Fees:      num.Zero(),
		Lots:      slices.Clone(b.lots),
	}
	for _, lot := range b.lots {
		net.Amount = net.Amount.Add(lot.Amount)
		net.TotalCost = net.TotalCost.Add(lot.Value())
		net.Fees = net.Fees.Add(lot.Fee)
		net.EarliestEntry = earliest(net.EarliestEntry, lot.EntryTime)
		net.LatestEntry = latest(net.LatestEntry, lot.EntryTime)
	}
	net.AveragePrice = net.TotalCost.Div(net.Amount)
	return net, true
}

type sequencedTrade struct {
	trade *Trade
	exit  bool
	seq   int64
}

// Trades derives the full trade list: both legs of every closed position
// plus an entry for every open lot, ordered by index with entries ahead of
// exits at the same index, then by arrival.
func (b *PositionBook) Trades() []*Trade {
	all := make([]sequencedTrade, 0, 2*len(b.closed)+len(b.lots))
	for _, c := range b.closed {
		all = append(all,
			sequencedTrade{trade: c.position.Entry(), seq: c.entrySeq},
			sequencedTrade{trade: c.position.Exit(), exit: true, seq: c.exitSeq})
	}
	for _, lot := range b.lots {
		t := newRecordedTrade(lot.EntryIndex, lot.EntryTime, b.startingSide, lot.EntryPrice, lot.Amount, lot.Fee,
			lot.OrderID, lot.CorrelationID)
		all = append(all, sequencedTrade{trade: t, seq: lot.seq})
	}
	slices.SortStableFunc(all, func(x, y sequencedTrade) int {
		if c := cmp.Compare(x.trade.Index(), y.trade.Index()); c != 0 {
			return c
		}
		if x.exit != y.exit {
			if x.exit {
				return 1
			}
			return -1
		}
		return cmp.Compare(x.seq, y.seq)
	})
	out := make([]*Trade, len(all))
	for i, s := range all {
		out[i] = s.trade
	}
	return out
}
