// Package journal provides durable backends for the transaction ledger.
package journal

import (
	"context"
	"fmt"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/efreitasn/tradesim/internal/store"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Journal is an append-only store of ledger entries.
type Journal interface {
	Append(ctx context.Context, e domain.LedgerEntry) error
	ListByAccount(ctx context.Context, accountID string) ([]domain.LedgerEntry, error)
	Close() error
}

// Open returns the journal for driver. dsn is a file path for sqlite and a
// connection URL for postgres; it is ignored for memory.
func Open(ctx context.Context, driver, dsn string) (Journal, error) {
	switch driver {
	case DriverMemory, "":
		return memory{store.NewTransactionStore()}, nil
	case DriverSQLite:
		return NewSQLite(dsn)
	case DriverPostgres:
		return NewPostgres(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown journal driver %q", driver)
}

type memory struct {
	*store.TransactionStore
}

func (memory) Close() error { return nil }
