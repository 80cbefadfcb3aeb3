package ledger

import (
	"fmt"
	"strings"
)

// Side is the direction of a single executed leg.
type Side int

const (
	Buy Side = iota
	Sell
)

// Complement returns the side that closes a position opened with s.
func (s Side) Complement() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// ParseSide accepts buy/sell in any case, plus long/short.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "LONG", "B":
		return Buy, nil
	case "SELL", "SHORT", "S":
		return Sell, nil
	}
	return Buy, fmt.Errorf("%w: unknown side %q", ErrInvalidInput, s)
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
