package trades

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	wallet_id TEXT NOT NULL,
	input_mint TEXT NOT NULL,
	output_mint TEXT NOT NULL,
	input_amount TEXT NOT NULL,
	output_amount TEXT NOT NULL,
	kind TEXT NOT NULL,
	signature TEXT NOT NULL DEFAULT '',
	executed_at DATETIME NOT NULL,
	input_usd_price TEXT,
	output_usd_price TEXT,
	input_usd_value TEXT,
	output_usd_value TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_trades_signature
	ON trades(signature) WHERE signature != '';

CREATE INDEX IF NOT EXISTS idx_trades_wallet_time
	ON trades(wallet_id, executed_at);
`
