package ledger

import (
	"fmt"
	"time"

	"github.com/rustyeddy/ledger/num"
)

// Fill is one execution reported by a venue. A zero Fee means no fee.
type Fill struct {
	Time          time.Time
	Side          Side
	Price         num.Num
	Amount        num.Num
	Fee           num.Num
	OrderID       string
	CorrelationID string
}

// Validate rejects fills the ledger cannot apply.
func (f Fill) Validate() error {
	if f.Amount.IsNaN() || !f.Amount.IsPositive() {
		return fmt.Errorf("%w: fill amount must be positive, got %s", ErrInvalidInput, f.Amount)
	}
	if f.Price.IsNaN() || f.Price.IsZero() {
		return fmt.Errorf("%w: fill price must be set", ErrInvalidInput)
	}
	if f.Fee.IsNaN() {
		return fmt.Errorf("%w: fill fee must not be NaN", ErrInvalidInput)
	}
	if f.Side != Buy && f.Side != Sell {
		return fmt.Errorf("%w: unknown fill side %d", ErrInvalidInput, int(f.Side))
	}
	return nil
}

// matchKey is the id a SPECIFIC_ID exit is matched on.
func (f Fill) matchKey() string {
	if f.CorrelationID != "" {
		return f.CorrelationID
	}
	return f.OrderID
}

func (f Fill) String() string {
	return fmt.Sprintf("Fill{side=%s price=%s amount=%s fee=%s}", f.Side, f.Price, f.Amount, f.Fee)
}
