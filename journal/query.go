package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/ledger/ledger"
)

const positionColumns = `
	position_id, record, side, amount, entry_index, exit_index,
	entry_time, exit_time, entry_price, exit_price,
	entry_fee, exit_fee, gross_profit, net_profit`

type scanner interface {
	Scan(dest ...any) error
}

func scanPosition(s scanner) (PositionRecord, error) {
	var (
		rec  PositionRecord
		side string
	)
	err := s.Scan(
		&rec.PositionID, &rec.Record, &side, &rec.Amount,
		&rec.EntryIndex, &rec.ExitIndex,
		&rec.EntryTime, &rec.ExitTime,
		&rec.EntryPrice, &rec.ExitPrice,
		&rec.EntryFee, &rec.ExitFee,
		&rec.GrossProfit, &rec.NetProfit,
	)
	if err != nil {
		return PositionRecord{}, err
	}
	if rec.Side, err = ledger.ParseSide(side); err != nil {
		return PositionRecord{}, err
	}
	return rec, nil
}

// GetPosition returns a single position by ID.
func (j *SQLite) GetPosition(positionID string) (PositionRecord, error) {
	row := j.db.QueryRow(`SELECT`+positionColumns+`
		FROM positions
		WHERE position_id = ?`, positionID)

	rec, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PositionRecord{}, fmt.Errorf("position %q not found", positionID)
	}
	return rec, err
}

// ListPositions returns every position of record in exit order.
func (j *SQLite) ListPositions(record string) ([]PositionRecord, error) {
	return j.queryPositions(`SELECT`+positionColumns+`
		FROM positions
		WHERE record = ?
		ORDER BY exit_index ASC, position_id ASC`, record)
}

// ListPositionsClosedBetween returns positions whose exit_time is within [start, end).
func (j *SQLite) ListPositionsClosedBetween(start, end time.Time) ([]PositionRecord, error) {
	return j.queryPositions(`SELECT`+positionColumns+`
		FROM positions
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC, position_id ASC`, start.UTC(), end.UTC())
}

func (j *SQLite) queryPositions(query string, args ...any) ([]PositionRecord, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PositionRecord
	for rows.Next() {
		rec, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestExposure returns the most recent exposure snapshot of record.
func (j *SQLite) LatestExposure(record string) (ExposureSnapshot, error) {
	var (
		e       ExposureSnapshot
		version int64
	)
	err := j.db.QueryRow(`
		SELECT time, record, version, amount, average_price, fees, lots, total_fees
		FROM exposure
		WHERE record = ?
		ORDER BY version DESC, rowid DESC
		LIMIT 1`, record).Scan(
		&e.Time, &e.Record, &version, &e.Amount, &e.AveragePrice, &e.Fees, &e.Lots, &e.TotalFees,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ExposureSnapshot{}, fmt.Errorf("no exposure for %q", record)
	}
	if err != nil {
		return ExposureSnapshot{}, err
	}
	e.Version = uint64(version)
	return e, nil
}
