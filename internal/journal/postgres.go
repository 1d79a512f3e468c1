package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/efreitasn/tradesim/internal/domain"
)

// Postgres is a Journal backed by a PostgreSQL connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to connString and applies the schema.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if _, err := pool.Exec(ctx, PostgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply postgres schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Append inserts e.
func (j *Postgres) Append(ctx context.Context, e domain.LedgerEntry) error {
	var orderID *string
	if e.OrderID != "" {
		orderID = &e.OrderID
	}
	_, err := j.pool.Exec(ctx, `
		INSERT INTO ledger_entries
		(entry_id, account_id, instrument_id, symbol, order_id, side, quantity,
		 price, gross, commission, tax, net, mode, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10::numeric, $11::numeric, $12::numeric, $13, $14)`,
		e.EntryID, e.AccountID, e.InstrumentID, e.Symbol, orderID,
		string(e.Side), e.Quantity,
		e.Price.String(), e.Gross.String(), e.Commission.String(), e.Tax.String(), e.Net.String(),
		string(e.Mode), e.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// ListByAccount returns the account's entries in append order.
func (j *Postgres) ListByAccount(ctx context.Context, accountID string) ([]domain.LedgerEntry, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT entry_id, account_id, instrument_id, symbol, order_id, side, quantity,
		       price::text, gross::text, commission::text, tax::text, net::text, mode, executed_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY entry_id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		var (
			e                                  domain.LedgerEntry
			orderID                            *string
			side, mode                         string
			price, gross, commission, tax, net string
		)
		if err := rows.Scan(&e.EntryID, &e.AccountID, &e.InstrumentID, &e.Symbol, &orderID,
			&side, &e.Quantity, &price, &gross, &commission, &tax, &net, &mode, &e.ExecutedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if orderID != nil {
			e.OrderID = *orderID
		}
		e.Side = domain.OrderSide(side)
		e.Mode = domain.AccountMode(mode)
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

// Close closes the pool.
func (j *Postgres) Close() error {
	j.pool.Close()
	return nil
}
