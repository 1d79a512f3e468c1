package journal

// SQLiteSchema creates the ledger table for the SQLite journal. Money is
// stored as decimal text so no precision is lost.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	entry_id      TEXT PRIMARY KEY,
	account_id    TEXT NOT NULL,
	instrument_id TEXT NOT NULL,
	symbol        TEXT NOT NULL,
	order_id      TEXT,
	side          TEXT NOT NULL,
	quantity      INTEGER NOT NULL,
	price         TEXT NOT NULL,
	gross         TEXT NOT NULL,
	commission    TEXT NOT NULL,
	tax           TEXT NOT NULL,
	net           TEXT NOT NULL,
	mode          TEXT NOT NULL,
	executed_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries(account_id, entry_id);
`

// PostgresSchema creates the ledger table for the Postgres journal.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS ledger_entries (
	entry_id      TEXT PRIMARY KEY,
	account_id    TEXT NOT NULL,
	instrument_id TEXT NOT NULL,
	symbol        TEXT NOT NULL,
	order_id      TEXT,
	side          TEXT NOT NULL,
	quantity      BIGINT NOT NULL,
	price         NUMERIC(20, 2) NOT NULL,
	gross         NUMERIC(20, 2) NOT NULL,
	commission    NUMERIC(20, 2) NOT NULL,
	tax           NUMERIC(20, 2) NOT NULL,
	net           NUMERIC(20, 2) NOT NULL,
	mode          TEXT NOT NULL,
	executed_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_account ON ledger_entries(account_id, entry_id);
`
