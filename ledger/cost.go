package ledger

import "github.com/rustyeddy/ledger/num"

// CostModel prices trading and holding costs. Implementations must be
// pure: the ledger shares one instance across every trade and position it
// builds and never mutates it.
//
// Two legs belong to the same position only if their cost models compare
// equal with ==, so implementations must be comparable types.
type CostModel interface {
	// Calculate returns the cost of trading amount at price.
	Calculate(price, amount num.Num) num.Num
	// CalculatePosition returns the cost of a position over its own life:
	// up to the exit for a closed position, the entry alone otherwise.
	CalculatePosition(p *Position) num.Num
	// CalculatePositionAt is CalculatePosition for an open position that is
	// valued at finalIndex.
	CalculatePositionAt(p *Position, finalIndex int) num.Num
}

func sameCostModel(a, b CostModel) bool {
	return a == b
}

// ZeroCost charges nothing.
type ZeroCost struct{}

func (ZeroCost) Calculate(num.Num, num.Num) num.Num { return num.Zero() }
func (ZeroCost) CalculatePosition(*Position) num.Num { return num.Zero() }
func (ZeroCost) CalculatePositionAt(*Position, int) num.Num { return num.Zero() }

// LinearTransactionCost charges Rate of the traded value on every leg.
type LinearTransactionCost struct {
	Rate num.Num
}

func NewLinearTransactionCost(rate num.Num) *LinearTransactionCost {
	return &LinearTransactionCost{Rate: rate}
}

func (m *LinearTransactionCost) Calculate(price, amount num.Num) num.Num {
	return m.Rate.Mul(price).Mul(amount)
}

func (m *LinearTransactionCost) CalculatePosition(p *Position) num.Num {
	total := num.Zero()
	if p == nil || p.Entry() == nil {
		return total
	}
	total = total.Add(m.Calculate(p.Entry().Price(), p.Entry().Amount()))
	if exit := p.Exit(); exit != nil {
		total = total.Add(m.Calculate(exit.Price(), exit.Amount()))
	}
	return total
}

func (m *LinearTransactionCost) CalculatePositionAt(p *Position, _ int) num.Num {
	return m.CalculatePosition(p)
}

// FixedTransactionCost charges a flat PerTrade fee on every leg.
type FixedTransactionCost struct {
	PerTrade num.Num
}

func NewFixedTransactionCost(perTrade num.Num) *FixedTransactionCost {
	return &FixedTransactionCost{PerTrade: perTrade}
}

func (m *FixedTransactionCost) Calculate(num.Num, num.Num) num.Num {
	return m.PerTrade
}

func (m *FixedTransactionCost) CalculatePosition(p *Position) num.Num {
	switch {
	case p == nil || p.IsNew():
		return num.Zero()
	case p.IsOpened():
		return m.PerTrade
	}
	return m.PerTrade.Mul(num.New(2))
}

func (m *FixedTransactionCost) CalculatePositionAt(p *Position, _ int) num.Num {
	return m.CalculatePosition(p)
}

// LinearBorrowingCost is a holding cost for short positions: the entry
// value times RatePerPeriod for every index the position stays open.
// Long positions cost nothing to hold.
type LinearBorrowingCost struct {
	RatePerPeriod num.Num
}

func NewLinearBorrowingCost(ratePerPeriod num.Num) *LinearBorrowingCost {
	return &LinearBorrowingCost{RatePerPeriod: ratePerPeriod}
}

func (m *LinearBorrowingCost) Calculate(num.Num, num.Num) num.Num {
	return num.Zero()
}

func (m *LinearBorrowingCost) CalculatePosition(p *Position) num.Num {
	if p == nil || !p.IsClosed() {
		return num.Zero()
	}
	return m.CalculatePositionAt(p, p.Exit().Index())
}

func (m *LinearBorrowingCost) CalculatePositionAt(p *Position, finalIndex int) num.Num {
	if p == nil || p.Entry() == nil || !p.Entry().IsSell() {
		return num.Zero()
	}
	periods := finalIndex - p.Entry().Index()
	if p.IsClosed() {
		periods = p.Exit().Index() - p.Entry().Index()
	}
	return p.Entry().Value().Mul(num.New(int64(periods))).Mul(m.RatePerPeriod)
}

// RecordedTradeCost uses the fee observed on each recorded leg instead of
// modelling one. It is the transaction cost model of every live ledger.
type RecordedTradeCost struct{}

func (RecordedTradeCost) Calculate(num.Num, num.Num) num.Num { return num.Zero() }

func (RecordedTradeCost) CalculatePosition(p *Position) num.Num {
	total := num.Zero()
	if p == nil || p.Entry() == nil {
		return total
	}
	total = total.Add(p.Entry().Cost())
	if exit := p.Exit(); exit != nil {
		total = total.Add(exit.Cost())
	}
	return total
}

func (m RecordedTradeCost) CalculatePositionAt(p *Position, _ int) num.Num {
	return m.CalculatePosition(p)
}
