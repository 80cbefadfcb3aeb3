// Package journal persists closed positions and exposure snapshots taken
// from ledger records.
package journal

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/num"
	"github.com/rustyeddy/ledger/pkg/id"
)

// PositionRecord is one closed position as written to a journal.
type PositionRecord struct {
	PositionID string
	Record     string
	Side       ledger.Side
	Amount     num.Num

	EntryIndex int
	ExitIndex  int
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice num.Num
	ExitPrice  num.Num
	EntryFee   num.Num
	ExitFee    num.Num

	GrossProfit num.Num
	NetProfit   num.Num
}

// ExposureSnapshot is the net open exposure of a record at a point in time.
type ExposureSnapshot struct {
	Time         time.Time
	Record       string
	Version      uint64
	Amount       num.Num
	AveragePrice num.Num
	Fees         num.Num
	Lots         int
	TotalFees    num.Num
}

type Journal interface {
	RecordPosition(PositionRecord) error
	RecordExposure(ExposureSnapshot) error
	Close() error
}

// FromPosition flattens a closed position. The ID sorts by exit time.
func FromPosition(record string, p *ledger.Position) PositionRecord {
	entry, exit := p.Entry(), p.Exit()
	return PositionRecord{
		PositionID:  id.At(exit.Time()),
		Record:      record,
		Side:        p.StartingSide(),
		Amount:      exit.Amount(),
		EntryIndex:  entry.Index(),
		ExitIndex:   exit.Index(),
		EntryTime:   entry.Time(),
		ExitTime:    exit.Time(),
		EntryPrice:  entry.Price(),
		ExitPrice:   exit.Price(),
		EntryFee:    entry.Cost(),
		ExitFee:     exit.Cost(),
		GrossProfit: p.GrossProfit(),
		NetProfit:   p.Profit(),
	}
}

// ExposureFromSnapshot summarizes a live record snapshot. A flat record
// reports zero amount and a NaN average price.
func ExposureFromSnapshot(at time.Time, s ledger.Snapshot) ExposureSnapshot {
	e := ExposureSnapshot{
		Time:         at,
		Record:       s.Name,
		Version:      s.Version,
		Amount:       num.Zero(),
		AveragePrice: num.NaN(),
		Fees:         num.Zero(),
		TotalFees:    s.TotalFees,
	}
	if s.HasOpen {
		e.Amount = s.NetOpen.Amount
		e.AveragePrice = s.NetOpen.AveragePrice
		e.Fees = s.NetOpen.Fees
		e.Lots = len(s.NetOpen.Lots)
	}
	return e
}

// Listener returns a close listener that journals every closed position.
// Listeners cannot fail a fill, so write errors are logged and dropped.
func Listener(j Journal, log zerolog.Logger) ledger.PositionClosedListener {
	return func(record string, p *ledger.Position) {
		rec := FromPosition(record, p)
		if err := j.RecordPosition(rec); err != nil {
			log.Error().Err(err).
				Str("record", record).
				Str("position_id", rec.PositionID).
				Msg("journal position")
		}
	}
}
