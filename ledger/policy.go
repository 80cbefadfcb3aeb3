package ledger

import (
	"fmt"
	"strings"
)

// MatchPolicy decides which open lot an exit fill closes.
type MatchPolicy int

const (
	// FIFO closes the oldest lot first.
	FIFO MatchPolicy = iota
	// LIFO closes the newest lot first.
	LIFO
	// AvgCost keeps a single lot at the amount-weighted average price.
	AvgCost
	// SpecificID closes the lot whose order or correlation id the exit names.
	SpecificID
)

var policyNames = map[MatchPolicy]string{
	FIFO:       "FIFO",
	LIFO:       "LIFO",
	AvgCost:    "AVG_COST",
	SpecificID: "SPECIFIC_ID",
}

func (p MatchPolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("MatchPolicy(%d)", int(p))
}

// ParseMatchPolicy accepts the policy names in any case; "-" and "_" are
// interchangeable.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	want := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
	for p, name := range policyNames {
		if name == want {
			return p, nil
		}
	}
	return FIFO, fmt.Errorf("%w: unknown match policy %q", ErrInvalidInput, s)
}

func (p MatchPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *MatchPolicy) UnmarshalText(b []byte) error {
	v, err := ParseMatchPolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// nextLot returns the position in lots of the lot that fill closes next.
// It is the only place match policies are dispatched.
func nextLot(policy MatchPolicy, lots []PositionLot, fill Fill) (int, error) {
	if len(lots) == 0 {
		return -1, fmt.Errorf("%w: no open lots to close", ErrIllegalState)
	}
	switch policy {
	case LIFO:
		return len(lots) - 1, nil
	case SpecificID:
		key := fill.matchKey()
		if strings.TrimSpace(key) == "" {
			return -1, fmt.Errorf("%w: specific-id matching needs a correlation id or order id", ErrInvalidInput)
		}
		for i, lot := range lots {
			if lot.matches(key) {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: no open lot matches %q", ErrIllegalState, key)
	}
	// FIFO, and AVG_COST which holds a single lot.
	return 0, nil
}
