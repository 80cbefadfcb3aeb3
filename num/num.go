// Package num provides the exact decimal number type used for prices,
// amounts and fees throughout the ledger.
package num

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Num is an exact decimal with a not-a-number sentinel.
// The zero value is 0. Any arithmetic involving NaN yields NaN, and
// division by zero yields NaN instead of panicking.
type Num struct {
	d   decimal.Decimal
	nan bool
}

var nan = Num{nan: true}

// NaN returns the not-a-number sentinel.
func NaN() Num { return nan }

// Zero returns 0.
func Zero() Num { return Num{} }

// One returns 1.
func One() Num { return Num{d: decimal.NewFromInt(1)} }

// Two returns 2.
func Two() Num { return Num{d: decimal.NewFromInt(2)} }

// New returns the integer v as a Num.
func New(v int64) Num { return Num{d: decimal.NewFromInt(v)} }

// FromFloat converts a float64. NaN and infinities map to NaN.
func FromFloat(f float64) Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nan
	}
	return Num{d: decimal.NewFromFloat(f)}
}

// FromDecimal wraps an existing decimal.
func FromDecimal(d decimal.Decimal) Num { return Num{d: d} }

// FromString parses a decimal string such as "101.25". "NaN" (any case)
// parses to the NaN sentinel.
func FromString(s string) (Num, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return nan, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nan, fmt.Errorf("parse number %q: %w", s, err)
	}
	return Num{d: d}, nil
}

// MustParse is FromString for literals known to be valid.
func MustParse(s string) Num {
	n, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Num) IsNaN() bool { return n.nan }

func (n Num) IsZero() bool { return !n.nan && n.d.IsZero() }

func (n Num) IsPositive() bool { return !n.nan && n.d.IsPositive() }

func (n Num) IsNegative() bool { return !n.nan && n.d.IsNegative() }

// Add returns n + o.
func (n Num) Add(o Num) Num {
	if n.nan || o.nan {
		return nan
	}
	return Num{d: n.d.Add(o.d)}
}

// Sub returns n - o.
func (n Num) Sub(o Num) Num {
	if n.nan || o.nan {
		return nan
	}
	return Num{d: n.d.Sub(o.d)}
}

// Mul returns n * o.
func (n Num) Mul(o Num) Num {
	if n.nan || o.nan {
		return nan
	}
	return Num{d: n.d.Mul(o.d)}
}

// Div returns n / o, or NaN when o is zero.
func (n Num) Div(o Num) Num {
	if n.nan || o.nan || o.d.IsZero() {
		return nan
	}
	return Num{d: n.d.Div(o.d)}
}

func (n Num) Neg() Num {
	if n.nan {
		return nan
	}
	return Num{d: n.d.Neg()}
}

func (n Num) Abs() Num {
	if n.nan {
		return nan
	}
	return Num{d: n.d.Abs()}
}

// Cmp compares by value. NaN sorts before every number and equal to itself.
func (n Num) Cmp(o Num) int {
	switch {
	case n.nan && o.nan:
		return 0
	case n.nan:
		return -1
	case o.nan:
		return 1
	}
	return n.d.Cmp(o.d)
}

// Equal reports value equality, so 2 and 2.00 are equal. NaN equals NaN.
func (n Num) Equal(o Num) bool { return n.Cmp(o) == 0 }

// LessThan and the other ordered comparisons are false when either side is NaN.
func (n Num) LessThan(o Num) bool {
	return !n.nan && !o.nan && n.d.LessThan(o.d)
}

func (n Num) GreaterThan(o Num) bool {
	return !n.nan && !o.nan && n.d.GreaterThan(o.d)
}

func (n Num) LessOrEqual(o Num) bool {
	return !n.nan && !o.nan && n.d.LessThanOrEqual(o.d)
}

func (n Num) GreaterOrEqual(o Num) bool {
	return !n.nan && !o.nan && n.d.GreaterThanOrEqual(o.d)
}

// Min returns the smaller of n and o, NaN if either is NaN.
func (n Num) Min(o Num) Num {
	if n.nan || o.nan {
		return nan
	}
	if o.d.LessThan(n.d) {
		return o
	}
	return n
}

// Max returns the larger of n and o, NaN if either is NaN.
func (n Num) Max(o Num) Num {
	if n.nan || o.nan {
		return nan
	}
	if o.d.GreaterThan(n.d) {
		return o
	}
	return n
}

// Float64 converts for reporting. NaN converts to math.NaN.
func (n Num) Float64() float64 {
	if n.nan {
		return math.NaN()
	}
	return n.d.InexactFloat64()
}

// Decimal returns the underlying decimal and false for NaN.
func (n Num) Decimal() (decimal.Decimal, bool) {
	return n.d, !n.nan
}

func (n Num) String() string {
	if n.nan {
		return "NaN"
	}
	return n.d.String()
}

// MarshalText lets Num appear in YAML/JSON configs and CSV rows as a
// plain decimal string.
func (n Num) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Num) UnmarshalText(b []byte) error {
	v, err := FromString(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// Value stores a Num as its decimal string so no precision is lost in
// SQL columns.
func (n Num) Value() (driver.Value, error) {
	return n.String(), nil
}

// Scan reads a Num from a TEXT, REAL, INTEGER or NULL column. NULL scans
// to NaN.
func (n *Num) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = nan
	case string:
		return n.UnmarshalText([]byte(v))
	case []byte:
		return n.UnmarshalText(v)
	case float64:
		*n = FromFloat(v)
	case int64:
		*n = New(v)
	default:
		return fmt.Errorf("scan number: unsupported type %T", src)
	}
	return nil
}

// Sum adds all values; the sum of nothing is 0.
func Sum(xs ...Num) Num {
	total := Zero()
	for _, x := range xs {
		total = total.Add(x)
	}
	return total
}
