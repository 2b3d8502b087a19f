package sqlitestore

const schemaSQL = `
CREATE TABLE IF NOT EXISTS ohlcv (
	symbol   TEXT    NOT NULL,
	interval TEXT    NOT NULL,
	ts       INTEGER NOT NULL,
	open     REAL    NOT NULL,
	high     REAL    NOT NULL,
	low      REAL    NOT NULL,
	close    REAL    NOT NULL,
	volume   INTEGER NOT NULL,
	ma10     REAL,
	ma20     REAL,
	ma50     REAL,
	ma100    REAL,
	ma200    REAL,
	ma10_score  REAL,
	ma20_score  REAL,
	ma50_score  REAL,
	ma100_score REAL,
	ma200_score REAL,
	close_changed       REAL,
	volume_changed      REAL,
	total_money_changed REAL,
	PRIMARY KEY (symbol, interval, ts)
);

CREATE INDEX IF NOT EXISTS idx_ohlcv_interval_ts ON ohlcv(interval, ts);
`

func (db *DB) migrate() error {
	_, err := db.conn.Exec(schemaSQL)
	return err
}
