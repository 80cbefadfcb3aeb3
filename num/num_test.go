package num

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmeticIsExact(t *testing.T) {
	t.Parallel()

	a := MustParse("0.1")
	b := MustParse("0.2")

	assert.True(t, a.Add(b).Equal(MustParse("0.3")))
	assert.True(t, MustParse("0.3").Sub(b).Equal(a))
	assert.True(t, New(2).Mul(MustParse("10")).Add(New(2).Mul(New(20))).Div(New(4)).Equal(New(15)))
}

func TestZeroValueIsZero(t *testing.T) {
	t.Parallel()

	var n Num
	assert.True(t, n.IsZero())
	assert.False(t, n.IsNaN())
	assert.True(t, n.Add(One()).Equal(One()))
}

func TestNaNPropagates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  Num
	}{
		{"add", NaN().Add(One())},
		{"sub", One().Sub(NaN())},
		{"mul", NaN().Mul(New(3))},
		{"div", One().Div(NaN())},
		{"div by zero", One().Div(Zero())},
		{"neg", NaN().Neg()},
		{"min", One().Min(NaN())},
		{"max", NaN().Max(One())},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, tt.got.IsNaN())
		})
	}
}

func TestComparisons(t *testing.T) {
	t.Parallel()

	assert.True(t, MustParse("2.00").Equal(New(2)))
	assert.True(t, One().LessThan(New(2)))
	assert.True(t, New(2).GreaterOrEqual(New(2)))
	assert.False(t, NaN().LessThan(One()))
	assert.False(t, NaN().GreaterThan(One()))
	assert.True(t, NaN().Equal(NaN()))
	assert.False(t, NaN().IsPositive())
	assert.True(t, New(-1).IsNegative())
	assert.True(t, New(3).Min(New(2)).Equal(New(2)))
	assert.True(t, New(3).Max(New(2)).Equal(New(3)))
}

func TestParseAndText(t *testing.T) {
	t.Parallel()

	n, err := FromString(" 101.25 ")
	require.NoError(t, err)
	assert.Equal(t, "101.25", n.String())

	n, err = FromString("NaN")
	require.NoError(t, err)
	assert.True(t, n.IsNaN())

	_, err = FromString("abc")
	assert.Error(t, err)

	var m Num
	require.NoError(t, m.UnmarshalText([]byte("0.001")))
	b, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0.001", string(b))
}

func TestFloatConversion(t *testing.T) {
	t.Parallel()

	assert.True(t, FromFloat(math.NaN()).IsNaN())
	assert.True(t, FromFloat(math.Inf(1)).IsNaN())
	assert.InDelta(t, 1.5, FromFloat(1.5).Float64(), 1e-12)
	assert.True(t, math.IsNaN(NaN().Float64()))
}

func TestSum(t *testing.T) {
	t.Parallel()

	assert.True(t, Sum().IsZero())
	assert.True(t, Sum(MustParse("0.1"), MustParse("0.2"), MustParse("0.7")).Equal(One()))
}

func TestSQLValueAndScan(t *testing.T) {
	t.Parallel()

	v, err := MustParse("12.3400").Value()
	require.NoError(t, err)
	assert.Equal(t, "12.34", v)

	tests := []struct {
		name string
		src  any
		want Num
	}{
		{"text", "1.25", MustParse("1.25")},
		{"bytes", []byte("-3"), New(-3)},
		{"real", 0.5, MustParse("0.5")},
		{"integer", int64(7), New(7)},
		{"null", nil, NaN()},
		{"nan text", "NaN", NaN()},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var n Num
			require.NoError(t, n.Scan(tt.src))
			assert.True(t, tt.want.Equal(n), "want %s, got %s", tt.want, n)
		})
	}

	var n Num
	assert.Error(t, n.Scan(true))
}
