package journal

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	positions *csv.Writer
	exposure  *csv.Writer
	pf, ef    *os.File
}

var (
	positionHeader = []string{
		"position_id", "record", "side", "amount", "entry_index", "exit_index",
		"entry_time", "exit_time", "entry_price", "exit_price",
		"entry_fee", "exit_fee", "gross_profit", "net_profit",
	}
	exposureHeader = []string{"time", "record", "version", "amount", "average_price", "fees", "lots", "total_fees"}
)

func NewCSV(positionsPath, exposurePath string) (*CSVJournal, error) {
	pf, err := os.Create(positionsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(exposurePath)
	if err != nil {
		_ = pf.Close()
		return nil, err
	}

	j := &CSVJournal{
		positions: csv.NewWriter(pf),
		exposure:  csv.NewWriter(ef),
		pf:        pf,
		ef:        ef,
	}
	if err := j.write(j.positions, positionHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	if err := j.write(j.exposure, exposureHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) RecordPosition(p PositionRecord) error {
	return j.write(j.positions, []string{
		p.PositionID,
		p.Record,
		p.Side.String(),
		p.Amount.String(),
		strconv.Itoa(p.EntryIndex),
		strconv.Itoa(p.ExitIndex),
		ts(p.EntryTime),
		ts(p.ExitTime),
		p.EntryPrice.String(),
		p.ExitPrice.String(),
		p.EntryFee.String(),
		p.ExitFee.String(),
		p.GrossProfit.String(),
		p.NetProfit.String(),
	})
}

func (j *CSVJournal) RecordExposure(e ExposureSnapshot) error {
	return j.write(j.exposure, []string{
		ts(e.Time),
		e.Record,
		strconv.FormatUint(e.Version, 10),
		e.Amount.String(),
		e.AveragePrice.String(),
		e.Fees.String(),
		strconv.Itoa(e.Lots),
		e.TotalFees.String(),
	})
}

// write flushes every row so a crashed run still leaves complete lines.
func (j *CSVJournal) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) Close() error {
	j.positions.Flush()
	j.exposure.Flush()
	return errors.Join(j.positions.Error(), j.exposure.Error(), j.pf.Close(), j.ef.Close())
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
