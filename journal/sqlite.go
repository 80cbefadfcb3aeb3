package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordPosition(p PositionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO positions (
			position_id, record, side, amount, entry_index, exit_index,
			entry_time, exit_time, entry_price, exit_price,
			entry_fee, exit_fee, gross_profit, net_profit
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PositionID, p.Record, p.Side.String(), p.Amount,
		p.EntryIndex, p.ExitIndex,
		p.EntryTime.UTC(), p.ExitTime.UTC(),
		p.EntryPrice, p.ExitPrice,
		p.EntryFee, p.ExitFee,
		p.GrossProfit, p.NetProfit,
	)
	return err
}

func (j *SQLite) RecordExposure(e ExposureSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO exposure (time, record, version, amount, average_price, fees, lots, total_fees)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Time.UTC(), e.Record, int64(e.Version),
		e.Amount, e.AveragePrice, e.Fees, e.Lots, e.TotalFees,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
