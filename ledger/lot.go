package ledger

import (
	"fmt"
	"time"

	"github.com/rustyeddy/ledger/num"
)

// PositionLot is a slice of still-open exposure created by one entry fill,
// or by merging several under AVG_COST. Lots are values: Reduce and Merge
// return the updated lot and leave the receiver alone.
type PositionLot struct {
	EntryIndex    int
	EntryTime     time.Time
	EntryPrice    num.Num
	Amount        num.Num
	Fee           num.Num
	OrderID       string
	CorrelationID string

	seq int64
}

// Reduce takes amount and fee out of the lot.
func (l PositionLot) Reduce(amount, fee num.Num) PositionLot {
	l.Amount = l.Amount.Sub(amount)
	l.Fee = l.Fee.Sub(fee)
	return l
}

// Merge folds o into l: the price becomes the amount-weighted average, fees
// add up, and the entry index, time and sequence are the earliest of the
// two. The ids of l are kept.
func (l PositionLot) Merge(o PositionLot) PositionLot {
	total := l.Amount.Add(o.Amount)
	if total.IsPositive() {
		l.EntryPrice = l.EntryPrice.Mul(l.Amount).Add(o.EntryPrice.Mul(o.Amount)).Div(total)
	}
	l.Amount = total
	l.Fee = l.Fee.Add(o.Fee)
	if o.EntryIndex < l.EntryIndex {
		l.EntryIndex = o.EntryIndex
	}
	l.EntryTime = earliest(l.EntryTime, o.EntryTime)
	if o.seq < l.seq {
		l.seq = o.seq
	}
	return l
}

// Value is entry price times open amount.
func (l PositionLot) Value() num.Num {
	return l.EntryPrice.Mul(l.Amount)
}

func (l PositionLot) matches(key string) bool {
	return key == l.CorrelationID || key == l.OrderID
}

func (l PositionLot) String() string {
	return fmt.Sprintf("Lot{index=%d price=%s amount=%s fee=%s}", l.EntryIndex, l.EntryPrice, l.Amount, l.Fee)
}

// earliest ignores zero times so that an untimed lot never wins.
func earliest(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case b.Before(a):
		return b
	}
	return a
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
