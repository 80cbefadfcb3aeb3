// Package replay drives a fills file through a ledger record and journals
// what closes.
package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/ledger/journal"
	"github.com/rustyeddy/ledger/ledger"
	"github.com/rustyeddy/ledger/num"
)

type Options struct {
	// Series prices rows whose price column is blank.
	Series ledger.PriceSeries
	// Journal, when set, receives every closed position and, for live
	// records, an exposure snapshot after each fill.
	Journal journal.Journal
	// SkipRejected logs fills the ledger rejects and keeps going instead of
	// stopping at the first one.
	SkipRejected bool
	Log          zerolog.Logger
}

type Result struct {
	Fills    int
	Rejected int
	// Ignored counts fills a base or multi record had nothing to do with,
	// such as an exit with nothing open.
	Ignored int
	Closed  []*ledger.Position
}

// Run replays feed into rec until the feed ends or ctx is done. Live
// records take fills as recorded, fee included; base and multi records are
// driven through Enter and Exit and price costs with their own models.
func Run(ctx context.Context, rec ledger.Record, feed *FillsFeed, opts Options) (Result, error) {
	var (
		res  Result
		next int
	)
	log := opts.Log.With().Str("component", "replay").Str("record", rec.Name()).Logger()

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		row, ok, err := feed.Next()
		if err != nil {
			return res, err
		}
		if !ok {
			break
		}

		index := row.Index
		if index < 0 {
			index = next
		}
		next = max(next, index+1)

		closed, applied, err := apply(rec, index, row.Fill, opts.Series)
		if err != nil {
			if !opts.SkipRejected || !isRejection(err) {
				return res, fmt.Errorf("line %d: %w", row.Line, err)
			}
			res.Rejected++
			log.Warn().Err(err).Int("line", row.Line).Int("index", index).Msg("fill rejected")
			continue
		}
		res.Fills++
		if !applied {
			res.Ignored++
			log.Debug().Int("line", row.Line).Int("index", index).Str("side", row.Fill.Side.String()).Msg("fill ignored")
			continue
		}
		res.Closed = append(res.Closed, closed...)

		if opts.Journal == nil {
			continue
		}
		for _, p := range closed {
			if err := opts.Journal.RecordPosition(journal.FromPosition(rec.Name(), p)); err != nil {
				return res, fmt.Errorf("journal position: %w", err)
			}
		}
		if live, ok := rec.(*ledger.LiveRecord); ok {
			snap := journal.ExposureFromSnapshot(row.Fill.Time, live.Snapshot())
			if err := opts.Journal.RecordExposure(snap); err != nil {
				return res, fmt.Errorf("journal exposure: %w", err)
			}
		}
	}

	log.Info().
		Int("fills", res.Fills).
		Int("rejected", res.Rejected).
		Int("ignored", res.Ignored).
		Int("closed", len(res.Closed)).
		Msg("replay finished")
	return res, nil
}

// apply records one fill and returns the positions it closed. applied is
// false when the record treated the fill as a no-op.
func apply(rec ledger.Record, index int, fill ledger.Fill, series ledger.PriceSeries) (closed []*ledger.Position, applied bool, err error) {
	if fill.Price.IsNaN() {
		price, ok := closePrice(series, index)
		if !ok {
			return nil, false, fmt.Errorf("%w: no price for index %d", ledger.ErrInvalidInput, index)
		}
		fill.Price = price
	}

	if live, ok := rec.(*ledger.LiveRecord); ok {
		closed, err := live.RecordFillAt(index, fill)
		return closed, err == nil, err
	}

	before := len(rec.Positions())
	if fill.Side == rec.StartingSide() {
		applied, err = rec.Enter(index, fill.Price, fill.Amount)
	} else {
		applied, err = rec.Exit(index, fill.Price, fill.Amount)
	}
	if err != nil || !applied {
		return nil, applied, err
	}
	return rec.Positions()[before:], true, nil
}

func closePrice(series ledger.PriceSeries, index int) (price num.Num, ok bool) {
	if series == nil {
		return num.NaN(), false
	}
	price, ok = series.ClosePrice(index)
	return price, ok && !price.IsNaN()
}

func isRejection(err error) bool {
	return errors.Is(err, ledger.ErrInvalidInput) || errors.Is(err, ledger.ErrIllegalState)
}
