package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/tradesim/internal/domain"
)

// SQLite is a Journal backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(SQLiteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Append inserts e.
func (j *SQLite) Append(ctx context.Context, e domain.LedgerEntry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO ledger_entries
		(entry_id, account_id, instrument_id, symbol, order_id, side, quantity,
		 price, gross, commission, tax, net, mode, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EntryID, e.AccountID, e.InstrumentID, e.Symbol, nullString(e.OrderID),
		string(e.Side), e.Quantity,
		e.Price.String(), e.Gross.String(), e.Commission.String(), e.Tax.String(), e.Net.String(),
		string(e.Mode), e.ExecutedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// ListByAccount returns the account's entries in append order.
func (j *SQLite) ListByAccount(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT entry_id, account_id, instrument_id, symbol, order_id, side, quantity,
		       price, gross, commission, tax, net, mode, executed_at
		FROM ledger_entries
		WHERE account_id = ?
		ORDER BY entry_id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		var (
			e                                  domain.LedgerEntry
			orderID                            sql.NullString
			side, mode, executedAt             string
			price, gross, commission, tax, net string
		)
		if err := rows.Scan(&e.EntryID, &e.AccountID, &e.InstrumentID, &e.Symbol, &orderID,
			&side, &e.Quantity, &price, &gross, &commission, &tax, &net, &mode, &executedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.OrderID = orderID.String
		e.Side = domain.OrderSide(side)
		e.Mode = domain.AccountMode(mode)
		if e.ExecutedAt, err = time.Parse(time.RFC3339Nano, executedAt); err != nil {
			return nil, fmt.Errorf("parse executed_at of %s: %w", e.EntryID, err)
		}
		if err := parseAmounts(&e, price, gross, commission, tax, net); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}

// Close closes the database.
func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func parseAmounts(e *domain.LedgerEntry, price, gross, commission, tax, net string) error {
	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&e.Price, price},
		{&e.Gross, gross},
		{&e.Commission, commission},
		{&e.Tax, tax},
		{&e.Net, net},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return fmt.Errorf("parse amount %q of %s: %w", f.src, e.EntryID, err)
		}
		*f.dst = d
	}
	return nil
}
