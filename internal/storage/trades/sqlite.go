package trades

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/solpnl/internal/domain"
)

// SQLiteStore is the trade ledger backed by a single sqlite database file.
// Amounts and USD valuations are stored as decimal strings; reading a row
// with a malformed numeric is a hard error, not a recoverable condition.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and migrates) the ledger database at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open trade ledger db")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply trade ledger schema")
	}

	return &SQLiteStore{db: db}, nil
}

// Insert writes the record to the ledger. Insertion is idempotent on a
// non-empty settlement signature: when a record with the same signature
// already exists, the stored record is returned and created is false.
func (s *SQLiteStore) Insert(ctx context.Context, t *domain.TradeRecord) (*domain.TradeRecord, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO trades
		(id, wallet_id, input_mint, output_mint, input_amount, output_amount,
		 kind, signature, executed_at,
		 input_usd_price, output_usd_price, input_usd_value, output_usd_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.WalletID, t.InputMint, t.OutputMint,
		t.InputAmount.String(), t.OutputAmount.String(),
		string(t.Kind), t.Signature, t.ExecutedAt.UTC(),
		nullDecimalString(t.InputUSDPrice), nullDecimalString(t.OutputUSDPrice),
		nullDecimalString(t.InputUSDValue), nullDecimalString(t.OutputUSDValue),
	)
	if err != nil {
		return nil, false, errors.Wrap(err, "insert trade")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, errors.Wrap(err, "insert trade: rows affected")
	}
	if affected > 0 {
		return t, true, nil
	}

	// signature collision: the economic event is already in the ledger
	existing, err := s.FindBySignature(ctx, t.Signature)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, errors.Errorf("insert trade %s ignored but no existing row found", t.ID)
	}
	return existing, false, nil
}

// FindBySignature returns the record with the given settlement signature,
// or nil when no such record exists.
func (s *SQLiteStore) FindBySignature(ctx context.Context, sig string) (*domain.TradeRecord, error) {
	if sig == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+` FROM trades WHERE signature = ?`, sig)
	if err != nil {
		return nil, errors.Wrap(err, "find trade by signature")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanTrade(rows)
}

// FindByWallet returns the wallet's records ordered by execution time
// ascending, ties broken by insertion order.
func (s *SQLiteStore) FindByWallet(ctx context.Context, walletID string, f domain.TradeFilter) ([]*domain.TradeRecord, error) {
	query := selectColumns + ` FROM trades WHERE wallet_id = ?`
	args := []any{walletID}
	query, args = applyFilter(query, args, f)
	query += ` ORDER BY executed_at ASC, rowid ASC`

	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "find trades by wallet")
	}
	defer rows.Close()

	var out []*domain.TradeRecord
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountByWallet returns how many records match the wallet and filter.
func (s *SQLiteStore) CountByWallet(ctx context.Context, walletID string, f domain.TradeFilter) (int, error) {
	query := `SELECT COUNT(*) FROM trades WHERE wallet_id = ?`
	args := []any{walletID}
	query, args = applyFilter(query, args, f)

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count trades by wallet")
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `
	SELECT id, wallet_id, input_mint, output_mint, input_amount, output_amount,
	       kind, signature, executed_at,
	       input_usd_price, output_usd_price, input_usd_value, output_usd_value`

func applyFilter(query string, args []any, f domain.TradeFilter) (string, []any) {
	if f.Mint != "" {
		query += ` AND (input_mint = ? OR output_mint = ?)`
		args = append(args, f.Mint, f.Mint)
	}
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	return query, args
}

func scanTrade(rows *sql.Rows) (*domain.TradeRecord, error) {
	var (
		t          domain.TradeRecord
		kind       string
		inAmount   string
		outAmount  string
		executedAt time.Time
		inPrice    sql.NullString
		outPrice   sql.NullString
		inValue    sql.NullString
		outValue   sql.NullString
	)

	err := rows.Scan(&t.ID, &t.WalletID, &t.InputMint, &t.OutputMint,
		&inAmount, &outAmount, &kind, &t.Signature, &executedAt,
		&inPrice, &outPrice, &inValue, &outValue)
	if err != nil {
		return nil, errors.Wrap(err, "scan trade row")
	}

	t.Kind = domain.TradeKind(kind)
	t.ExecutedAt = executedAt

	if t.InputAmount, err = decimal.NewFromString(inAmount); err != nil {
		return nil, errors.Wrapf(err, "trade %s: malformed input amount %q", t.ID, inAmount)
	}
	if t.OutputAmount, err = decimal.NewFromString(outAmount); err != nil {
		return nil, errors.Wrapf(err, "trade %s: malformed output amount %q", t.ID, outAmount)
	}
	if t.InputUSDPrice, err = parseNullDecimal(inPrice); err != nil {
		return nil, errors.Wrapf(err, "trade %s: malformed input usd price", t.ID)
	}
	if t.OutputUSDPrice, err = parseNullDecimal(outPrice); err != nil {
		return nil, errors.Wrapf(err, "trade %s: malformed output usd price", t.ID)
	}
	if t.InputUSDValue, err = parseNullDecimal(inValue); err != nil {
		return nil, errors.Wrapf(err, "trade %s: malformed input usd value", t.ID)
	}
	if t.OutputUSDValue, err = parseNullDecimal(outValue); err != nil {
		return nil, errors.Wrapf(err, "trade %s: malformed output usd value", t.ID)
	}

	return &t, nil
}

func nullDecimalString(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func parseNullDecimal(s sql.NullString) (decimal.NullDecimal, error) {
	if !s.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
