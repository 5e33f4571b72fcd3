package ledger

const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	name TEXT PRIMARY KEY,
	cash REAL NOT NULL,
	pnl REAL NOT NULL DEFAULT 0,
	seq INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	account TEXT NOT NULL,
	ticker TEXT NOT NULL,
	qty INTEGER NOT NULL,
	entry_price REAL NOT NULL,
	PRIMARY KEY (account, ticker)
);

CREATE TABLE IF NOT EXISTS offers (
	id TEXT PRIMARY KEY,
	submitter TEXT NOT NULL,
	ticker TEXT NOT NULL,
	direction TEXT NOT NULL,
	price REAL NOT NULL,
	quantity INTEGER NOT NULL,
	matched INTEGER NOT NULL,
	seq INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS closed_trades (
	id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	ticker TEXT NOT NULL,
	qty INTEGER NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	pnl REAL NOT NULL,
	direction TEXT NOT NULL,
	ts TEXT NOT NULL,
	seq INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_closed_trades_account ON closed_trades(account);
`
