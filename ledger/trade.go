package ledger

import (
	"fmt"
	"time"

	"github.com/rustyeddy/ledger/num"
)

// TradeKind tells how a trade's cost was obtained.
type TradeKind int

const (
	// Modeled trades derive their cost from a CostModel.
	Modeled TradeKind = iota
	// Recorded trades carry the fee the venue reported.
	Recorded
)

func (k TradeKind) String() string {
	if k == Recorded {
		return "recorded"
	}
	return "modeled"
}

// Trade is one executed leg. It is immutable once built.
type Trade struct {
	kind      TradeKind
	index     int
	side      Side
	price     num.Num
	amount    num.Num
	cost      num.Num
	netPrice  num.Num
	costModel CostModel

	// set on recorded trades only
	time          time.Time
	orderID       string
	correlationID string
}

// NewTrade builds a modeled trade whose cost comes from model (ZeroCost
// when nil).
func NewTrade(index int, side Side, price, amount num.Num, model CostModel) (*Trade, error) {
	if err := validateLeg(price, amount); err != nil {
		return nil, err
	}
	if model == nil {
		model = ZeroCost{}
	}
	t := &Trade{
		kind:      Modeled,
		index:     index,
		side:      side,
		price:     price,
		amount:    amount,
		costModel: model,
	}
	t.setCost(model.Calculate(price, amount))
	return t, nil
}

// NewRecordedTrade builds a trade whose cost is the observed fee.
func NewRecordedTrade(index int, at time.Time, side Side, price, amount, fee num.Num, orderID, correlationID string) (*Trade, error) {
	if err := validateLeg(price, amount); err != nil {
		return nil, err
	}
	if fee.IsNaN() {
		return nil, fmt.Errorf("%w: trade fee must be set", ErrInvalidInput)
	}
	return newRecordedTrade(index, at, side, price, amount, fee, orderID, correlationID), nil
}

func newRecordedTrade(index int, at time.Time, side Side, price, amount, fee num.Num, orderID, correlationID string) *Trade {
	t := &Trade{
		kind:          Recorded,
		index:         index,
		side:          side,
		price:         price,
		amount:        amount,
		costModel:     RecordedTradeCost{},
		time:          at,
		orderID:       orderID,
		correlationID: correlationID,
	}
	t.setCost(fee)
	return t
}

func validateLeg(price, amount num.Num) error {
	if amount.IsNaN() || !amount.IsPositive() {
		return fmt.Errorf("%w: trade amount must be positive, got %s", ErrInvalidInput, amount)
	}
	if price.IsNaN() {
		return fmt.Errorf("%w: trade price must be set", ErrInvalidInput)
	}
	return nil
}

func (t *Trade) setCost(cost num.Num) {
	t.cost = cost
	perUnit := cost.Div(t.amount)
	if t.side == Buy {
		t.netPrice = t.price.Add(perUnit)
	} else {
		t.netPrice = t.price.Sub(perUnit)
	}
}

func (t *Trade) Kind() TradeKind { return t.kind }

func (t *Trade) Index() int { return t.index }

func (t *Trade) Side() Side { return t.side }

// Price is the execution price per unit, before costs.
func (t *Trade) Price() num.Num { return t.price }

func (t *Trade) Amount() num.Num { return t.amount }

// Cost is the transaction cost of this leg.
func (t *Trade) Cost() num.Num { return t.cost }

// NetPrice is the price per unit with the cost folded in: higher for buys,
// lower for sells.
func (t *Trade) NetPrice() num.Num { return t.netPrice }

func (t *Trade) CostModel() CostModel { return t.costModel }

// Value is price times amount.
func (t *Trade) Value() num.Num { return t.price.Mul(t.amount) }

func (t *Trade) Time() time.Time { return t.time }

func (t *Trade) OrderID() string { return t.orderID }

func (t *Trade) CorrelationID() string { return t.correlationID }

func (t *Trade) IsBuy() bool { return t.side == Buy }

func (t *Trade) IsSell() bool { return t.side == Sell }

// Equal compares trades by value.
func (t *Trade) Equal(o *Trade) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.kind == o.kind &&
		t.index == o.index &&
		t.side == o.side &&
		t.price.Equal(o.price) &&
		t.amount.Equal(o.amount) &&
		t.cost.Equal(o.cost) &&
		t.time.Equal(o.time) &&
		t.orderID == o.orderID &&
		t.correlationID == o.correlationID
}

func (t *Trade) String() string {
	return fmt.Sprintf("Trade{side=%s index=%d price=%s amount=%s cost=%s}",
		t.side, t.index, t.price, t.amount, t.cost)
}
