package journal

// Schema is applied on every open. Numbers are stored as decimal text.
const Schema = `
CREATE TABLE IF NOT EXISTS positions (
	position_id  TEXT PRIMARY KEY,
	record       TEXT NOT NULL,
	side         TEXT NOT NULL,
	amount       TEXT NOT NULL,
	entry_index  INTEGER NOT NULL,
	exit_index   INTEGER NOT NULL,
	entry_time   DATETIME NOT NULL,
	exit_time    DATETIME NOT NULL,
	entry_price  TEXT NOT NULL,
	exit_price   TEXT NOT NULL,
	entry_fee    TEXT NOT NULL,
	exit_fee     TEXT NOT NULL,
	gross_profit TEXT NOT NULL,
	net_profit   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_positions_record ON positions(record, exit_index);
CREATE INDEX IF NOT EXISTS idx_positions_exit_time ON positions(exit_time);

CREATE TABLE IF NOT EXISTS exposure (
	time          DATETIME NOT NULL,
	record        TEXT NOT NULL,
	version       INTEGER NOT NULL,
	amount        TEXT NOT NULL,
	average_price TEXT NOT NULL,
	fees          TEXT NOT NULL,
	lots          INTEGER NOT NULL,
	total_fees    TEXT NOT NULL
);
`
