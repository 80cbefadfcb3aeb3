package ledger

import (
	"fmt"

	"github.com/rustyeddy/ledger/num"
)

// Position pairs an entry trade with an optional exit trade on the
// complementary side. It moves New -> Opened -> Closed and never back.
type Position struct {
	startingSide    Side
	entry           *Trade
	exit            *Trade
	transactionCost CostModel
	holdingCost     CostModel
}

// NewPosition returns a new, empty position whose entry will be on
// startingSide. Nil cost models are replaced by ZeroCost.
func NewPosition(startingSide Side, transaction, holding CostModel) *Position {
	return &Position{
		startingSide:    startingSide,
		transactionCost: orZeroCost(transaction),
		holdingCost:     orZeroCost(holding),
	}
}

// NewClosedPosition builds a closed position from two existing legs. The
// legs must be on opposite sides and both must use the transaction cost
// model.
func NewClosedPosition(entry, exit *Trade, transaction, holding CostModel) (*Position, error) {
	if entry == nil || exit == nil {
		return nil, fmt.Errorf("%w: closed position needs both legs", ErrInvalidInput)
	}
	if entry.Side() == exit.Side() {
		return nil, fmt.Errorf("%w: entry and exit are both %s", ErrInvalidInput, entry.Side())
	}
	p, err := newOpenPosition(entry, transaction, holding)
	if err != nil {
		return nil, err
	}
	if !sameCostModel(exit.CostModel(), p.transactionCost) {
		return nil, fmt.Errorf("%w: exit cost model differs from position cost model", ErrInvalidInput)
	}
	p.exit = exit
	return p, nil
}

func newOpenPosition(entry *Trade, transaction, holding CostModel) (*Position, error) {
	p := NewPosition(entry.Side(), transaction, holding)
	if !sameCostModel(entry.CostModel(), p.transactionCost) {
		return nil, fmt.Errorf("%w: entry cost model differs from position cost model", ErrInvalidInput)
	}
	p.entry = entry
	return p, nil
}

func orZeroCost(m CostModel) CostModel {
	if m == nil {
		return ZeroCost{}
	}
	return m
}

// Operate adds the next leg: the entry when the position is new, the exit
// when it is opened. The exit may not come before the entry.
func (p *Position) Operate(index int, price, amount num.Num) (*Trade, error) {
	switch {
	case p.IsClosed():
		return nil, fmt.Errorf("%w: position is already closed", ErrIllegalState)
	case p.IsOpened():
		if index < p.entry.Index() {
			return nil, fmt.Errorf("%w: exit index %d is before entry index %d", ErrIllegalState, index, p.entry.Index())
		}
		t, err := NewTrade(index, p.startingSide.Complement(), price, amount, p.transactionCost)
		if err != nil {
			return nil, err
		}
		p.exit = t
		return t, nil
	}
	t, err := NewTrade(index, p.startingSide, price, amount, p.transactionCost)
	if err != nil {
		return nil, err
	}
	p.entry = t
	return t, nil
}

func (p *Position) Entry() *Trade { return p.entry }

func (p *Position) Exit() *Trade { return p.exit }

func (p *Position) StartingSide() Side { return p.startingSide }

func (p *Position) TransactionCostModel() CostModel { return p.transactionCost }

func (p *Position) HoldingCostModel() CostModel { return p.holdingCost }

func (p *Position) IsNew() bool { return p.entry == nil && p.exit == nil }

func (p *Position) IsOpened() bool { return p.entry != nil && p.exit == nil }

func (p *Position) IsClosed() bool { return p.entry != nil && p.exit != nil }

// Profit is the net profit of a closed position, zero otherwise.
func (p *Position) Profit() num.Num {
	if !p.IsClosed() {
		return num.Zero()
	}
	return p.GrossProfit().Sub(p.PositionCost())
}

// ProfitAt values the position as if it were exited at finalPrice on
// finalIndex, net of costs up to that index.
func (p *Position) ProfitAt(finalIndex int, finalPrice num.Num) num.Num {
	if p.IsNew() {
		return num.Zero()
	}
	return p.GrossProfitAt(finalPrice).Sub(p.PositionCostAt(finalIndex))
}

func (p *Position) HasProfit() bool { return p.Profit().IsPositive() }

func (p *Position) HasLoss() bool { return p.Profit().IsNegative() }

// GrossProfit is the profit of a closed position before costs.
func (p *Position) GrossProfit() num.Num {
	if !p.IsClosed() {
		return num.Zero()
	}
	return p.GrossProfitAt(p.exit.Price())
}

// GrossProfitAt is the profit before costs if the open amount were exited
// at finalPrice. For a closed position finalPrice is ignored. Short
// positions profit when the price falls.
func (p *Position) GrossProfitAt(finalPrice num.Num) num.Num {
	if p.IsNew() {
		return num.Zero()
	}
	var gross num.Num
	if p.IsOpened() {
		gross = p.entry.Amount().Mul(finalPrice).Sub(p.entry.Value())
	} else {
		gross = p.exit.Value().Sub(p.entry.Value())
	}
	if p.entry.IsSell() {
		gross = gross.Neg()
	}
	return gross
}

// GrossReturn is exit over entry price for a closed position, 1-based:
// 1.04 is a 4% gain. Zero for positions that are not closed.
func (p *Position) GrossReturn() num.Num {
	if !p.IsClosed() {
		return num.Zero()
	}
	return p.GrossReturnBetween(p.entry.Price(), p.exit.Price())
}

// GrossReturnAt is GrossReturn with the exit assumed at finalPrice.
func (p *Position) GrossReturnAt(finalPrice num.Num) num.Num {
	if p.IsNew() {
		return num.Zero()
	}
	return p.GrossReturnBetween(p.entry.Price(), finalPrice)
}

// GrossReturnBetween is the 1-based return of moving from entryPrice to
// exitPrice in this position's direction.
func (p *Position) GrossReturnBetween(entryPrice, exitPrice num.Num) num.Num {
	ratio := exitPrice.Div(entryPrice)
	if p.entry != nil && p.entry.IsSell() {
		return num.Two().Sub(ratio)
	}
	return ratio
}

// PositionCost is transaction plus holding cost over the position's life.
func (p *Position) PositionCost() num.Num {
	return p.transactionCost.CalculatePosition(p).Add(p.HoldingCost())
}

// PositionCostAt is PositionCost for an open position valued at finalIndex.
func (p *Position) PositionCostAt(finalIndex int) num.Num {
	return p.transactionCost.CalculatePositionAt(p, finalIndex).Add(p.HoldingCostAt(finalIndex))
}

func (p *Position) HoldingCost() num.Num {
	return p.holdingCost.CalculatePosition(p)
}

func (p *Position) HoldingCostAt(finalIndex int) num.Num {
	return p.holdingCost.CalculatePositionAt(p, finalIndex)
}

// Equal compares both legs by value.
func (p *Position) Equal(o *Position) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.entry.Equal(o.entry) && p.exit.Equal(o.exit)
}

func (p *Position) String() string {
	return fmt.Sprintf("Position{entry=%v exit=%v}", p.entry, p.exit)
}
