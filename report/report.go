// Package report summarizes the closed positions of a ledger.
package report

import (
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/num"
)

// Summary of a set of closed positions. Returns are per-position gross
// returns minus one, so 0.05 is a 5% gain before costs.
type Summary struct {
	Positions int
	Winners   int
	Losers    int

	GrossProfit num.Num
	NetProfit   num.Num
	Fees        num.Num

	MeanReturn   float64
	StdDevReturn float64
	MedianReturn float64
	BestReturn   float64
	WorstReturn  float64
}

// Summarize skips positions that are not closed. Winners and losers are
// counted on net profit.
func Summarize(positions []*ledger.Position) Summary {
	s := Summary{
		GrossProfit: num.Zero(),
		NetProfit:   num.Zero(),
		Fees:        num.Zero(),
	}

	var returns []float64
	for _, p := range positions {
		if p == nil || !p.IsClosed() {
			continue
		}
		s.Positions++
		switch {
		case p.HasProfit():
			s.Winners++
		case p.HasLoss():
			s.Losers++
		}
		s.GrossProfit = s.GrossProfit.Add(p.GrossProfit())
		s.NetProfit = s.NetProfit.Add(p.Profit())
		s.Fees = s.Fees.Add(p.PositionCost())

		if r := p.GrossReturn(); !r.IsNaN() {
			returns = append(returns, r.Sub(num.One()).Float64())
		}
	}

	if len(returns) == 0 {
		return s
	}
	s.MeanReturn = stat.Mean(returns, nil)
	if len(returns) > 1 {
		s.StdDevReturn = stat.StdDev(returns, nil)
	}
	s.BestReturn = floats.Max(returns)
	s.WorstReturn = floats.Min(returns)

	sorted := slices.Clone(returns)
	slices.Sort(sorted)
	s.MedianReturn = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return s
}

// WinRate is winners over closed positions, zero when there are none.
func (s Summary) WinRate() float64 {
	if s.Positions == 0 {
		return 0
	}
	return float64(s.Winners) / float64(s.Positions)
}

// Write prints the summary as aligned key/value lines.
func (s Summary) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, `positions      %d
winners        %d
losers         %d
win rate       %.2f%%
gross profit   %s
net profit     %s
fees           %s
mean return    %.4f%%
stddev return  %.4f%%
median return  %.4f%%
best return    %.4f%%
worst return   %.4f%%
`,
		s.Positions, s.Winners, s.Losers, s.WinRate()*100,
		s.GrossProfit, s.NetProfit, s.Fees,
		s.MeanReturn*100, s.StdDevReturn*100, s.MedianReturn*100,
		s.BestReturn*100, s.WorstReturn*100,
	)
	return err
}
